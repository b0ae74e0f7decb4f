package sys

import (
	"context"
	"database/sql"
)

type RPGCharacter struct {
	GuildID string
	UserID  string
	HP      int
	MaxHP   int
	Attack  int
	Gold    int64
	Level   int
	XP      int
}

func EnsureRPGCharacter(ctx context.Context, guildID, userID string) (*RPGCharacter, error) {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO rpg_characters (guild_id, user_id) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE user_id = user_id
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	return GetRPGCharacter(ctx, guildID, userID)
}

func GetRPGCharacter(ctx context.Context, guildID, userID string) (*RPGCharacter, error) {
	c := &RPGCharacter{GuildID: guildID, UserID: userID}
	err := DB.QueryRowContext(ctx, `
		SELECT hp, max_hp, attack, gold, level, xp FROM rpg_characters
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID).Scan(&c.HP, &c.MaxHP, &c.Attack, &c.Gold, &c.Level, &c.XP)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func SaveRPGCharacter(ctx context.Context, c *RPGCharacter) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE rpg_characters SET hp = ?, max_hp = ?, attack = ?, gold = ?, level = ?, xp = ?
		WHERE guild_id = ? AND user_id = ?
	`, c.HP, c.MaxHP, c.Attack, c.Gold, c.Level, c.XP, c.GuildID, c.UserID)
	return err
}
