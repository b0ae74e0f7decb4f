package sys

import (
	"context"
	"database/sql"
)

func SetVoiceHub(ctx context.Context, guildID, channelID string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO voice_hubs (guild_id, hub_channel_id) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE hub_channel_id = VALUES(hub_channel_id)
	`, guildID, channelID)
	return err
}

func GetVoiceHub(ctx context.Context, guildID string) (string, error) {
	var channelID string
	err := DB.QueryRowContext(ctx, `
		SELECT hub_channel_id FROM voice_hubs WHERE guild_id = ?
	`, guildID).Scan(&channelID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return channelID, err
}

func ClearVoiceHub(ctx context.Context, guildID string) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM voice_hubs WHERE guild_id = ?", guildID)
	return err
}

type TempVoiceChannel struct {
	ChannelID string
	GuildID   string
	OwnerID   string
}

func InsertTempVoiceChannel(ctx context.Context, channelID, guildID, ownerID string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO voice_temp_channels (channel_id, guild_id, owner_id) VALUES (?, ?, ?)
	`, channelID, guildID, ownerID)
	return err
}

func DeleteTempVoiceChannel(ctx context.Context, channelID string) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM voice_temp_channels WHERE channel_id = ?", channelID)
	return err
}

func IsTempVoiceChannel(ctx context.Context, channelID string) (bool, error) {
	var one int
	err := DB.QueryRowContext(ctx, `
		SELECT 1 FROM voice_temp_channels WHERE channel_id = ?
	`, channelID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func GetAllTempVoiceChannels(ctx context.Context) ([]*TempVoiceChannel, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT channel_id, guild_id, owner_id FROM voice_temp_channels
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TempVoiceChannel
	for rows.Next() {
		c := &TempVoiceChannel{}
		if err := rows.Scan(&c.ChannelID, &c.GuildID, &c.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
