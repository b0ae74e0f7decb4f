package sys

import (
	"context"
)

type EmojiCount struct {
	EmojiID   string
	EmojiName string
	Uses      int64
}

// BumpEmojiUsage increments the usage counter for a custom emoji.
func BumpEmojiUsage(ctx context.Context, guildID, emojiID, emojiName string, n int64) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO emoji_usage (guild_id, emoji_id, emoji_name, uses)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE uses = uses + VALUES(uses), emoji_name = VALUES(emoji_name)
	`, guildID, emojiID, emojiName, n)
	return err
}

func GetTopEmoji(ctx context.Context, guildID string, limit int) ([]*EmojiCount, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT emoji_id, emoji_name, uses FROM emoji_usage
		WHERE guild_id = ? ORDER BY uses DESC LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EmojiCount
	for rows.Next() {
		e := &EmojiCount{}
		if err := rows.Scan(&e.EmojiID, &e.EmojiName, &e.Uses); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
