package sys

import (
	"context"
	"database/sql"
	"time"
)

type LevelEntry struct {
	GuildID  string
	UserID   string
	XP       int
	Level    int
	LastXPAt sql.NullTime
}

// LevelForXP returns the level reached with xp total XP. The curve is the
// usual quadratic one: level n needs 50*n^2 + 100*n total XP.
func LevelForXP(xp int) int {
	level := 0
	for XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// XPForLevel returns the total XP required to reach level n.
func XPForLevel(n int) int {
	if n <= 0 {
		return 0
	}
	return 50*n*n + 100*n
}

// GrantXP adds XP for a message if the per-user cooldown has elapsed.
// It returns the new level and whether the user just leveled up. The row
// stays locked from the cooldown check to the write, so a burst of messages
// dispatched concurrently grants at most once per window.
func GrantXP(ctx context.Context, guildID, userID string, amount int, cooldown time.Duration) (int, bool, error) {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var xp, level int
	var last sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT xp, level, last_xp_at FROM levels
		WHERE guild_id = ? AND user_id = ? FOR UPDATE
	`, guildID, userID).Scan(&xp, &level, &last)
	if err != nil && err != sql.ErrNoRows {
		return 0, false, err
	}

	now := time.Now().UTC()
	if last.Valid && now.Sub(last.Time) < cooldown {
		return level, false, nil
	}

	xp += amount
	newLevel := LevelForXP(xp)
	leveledUp := newLevel > level

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO levels (guild_id, user_id, xp, level, last_xp_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE xp = VALUES(xp), level = VALUES(level), last_xp_at = VALUES(last_xp_at)
	`, guildID, userID, xp, newLevel, now); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return newLevel, leveledUp, nil
}

func GetLevel(ctx context.Context, guildID, userID string) (*LevelEntry, error) {
	e := &LevelEntry{GuildID: guildID, UserID: userID}
	err := DB.QueryRowContext(ctx, `
		SELECT xp, level, last_xp_at FROM levels WHERE guild_id = ? AND user_id = ?
	`, guildID, userID).Scan(&e.XP, &e.Level, &e.LastXPAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetLevelRank returns the 1-based leaderboard position of a user.
func GetLevelRank(ctx context.Context, guildID, userID string) (int, error) {
	var rank int
	err := DB.QueryRowContext(ctx, `
		SELECT COUNT(*) + 1 FROM levels
		WHERE guild_id = ? AND xp > (SELECT xp FROM levels WHERE guild_id = ? AND user_id = ?)
	`, guildID, guildID, userID).Scan(&rank)
	return rank, err
}

func GetTopLevels(ctx context.Context, guildID string, limit int) ([]*LevelEntry, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT user_id, xp, level FROM levels
		WHERE guild_id = ? ORDER BY xp DESC LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LevelEntry
	for rows.Next() {
		e := &LevelEntry{GuildID: guildID}
		if err := rows.Scan(&e.UserID, &e.XP, &e.Level); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
