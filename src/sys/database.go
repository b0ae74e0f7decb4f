package sys

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	_ "github.com/go-sql-driver/mysql"

	"github.com/ashvale/ember/migrations"
)

var DB *sql.DB

// InitDatabase opens the MySQL connection and applies pending schema
// migrations before anything else touches the database.
func InitDatabase(ctx context.Context, dsn string) error {
	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := DB.PingContext(initCtx); err != nil {
		return fmt.Errorf(MsgDatabasePingFailed, err)
	}

	if err := ApplyMigrations(initCtx, DB, migrations.FS); err != nil {
		return fmt.Errorf(MsgDatabaseMigrateFailed, err)
	}

	LogDatabase(MsgDatabaseInitSuccess)
	return nil
}

func CloseDatabase() {
	if DB != nil {
		DB.Close()
	}
}

// --- Bot config (dashboard-editable key/value state) ---

func GetBotConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := DB.QueryRowContext(ctx, "SELECT value FROM bot_config WHERE name = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func SetBotConfig(ctx context.Context, key, value string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO bot_config (name, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func GetAllBotConfig(ctx context.Context) (map[string]string, error) {
	rows, err := DB.QueryContext(ctx, "SELECT name, value FROM bot_config ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// --- Command log (dashboard reads this back) ---

type CommandLogEntry struct {
	ID        int64
	GuildID   string
	ChannelID string
	UserID    string
	Command   string
	CreatedAt time.Time
}

func InsertCommandLog(ctx context.Context, guildID, channelID, userID, command string) error {
	_, err := DB.ExecContext(ctx, `
		INSERT INTO command_log (guild_id, channel_id, user_id, command)
		VALUES (?, ?, ?, ?)
	`, guildID, channelID, userID, command)
	return err
}

func GetRecentCommandLog(ctx context.Context, limit int) ([]*CommandLogEntry, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT id, guild_id, channel_id, user_id, command, created_at
		FROM command_log ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*CommandLogEntry
	for rows.Next() {
		e := &CommandLogEntry{}
		if err := rows.Scan(&e.ID, &e.GuildID, &e.ChannelID, &e.UserID, &e.Command, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func logCommandInvocation(i *discordgo.InteractionCreate) {
	user := InteractionUser(i)
	if user == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := InsertCommandLog(ctx, i.GuildID, i.ChannelID, user.ID, i.ApplicationCommandData().Name); err != nil {
		LogDebug("Failed to record command invocation: %v", err)
	}
}

func GetCommandCount(ctx context.Context) (int64, error) {
	var count int64
	err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM command_log").Scan(&count)
	return count, err
}
