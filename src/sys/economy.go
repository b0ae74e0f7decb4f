package sys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type Wallet struct {
	GuildID     string
	UserID      string
	Coins       int64
	DailyStreak int
	LastDaily   sql.NullTime
}

// EnsureWallet creates the wallet with the configured starting balance if it
// does not exist yet, then returns it.
func EnsureWallet(ctx context.Context, guildID, userID string) (*Wallet, error) {
	start := int64(0)
	if GlobalConfig != nil {
		start = GlobalConfig.StartCoins
	}
	_, err := DB.ExecContext(ctx, `
		INSERT INTO users (guild_id, user_id, coins) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE user_id = user_id
	`, guildID, userID, start)
	if err != nil {
		return nil, err
	}
	return GetWallet(ctx, guildID, userID)
}

func GetWallet(ctx context.Context, guildID, userID string) (*Wallet, error) {
	w := &Wallet{GuildID: guildID, UserID: userID}
	err := DB.QueryRowContext(ctx, `
		SELECT coins, daily_streak, last_daily FROM users
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID).Scan(&w.Coins, &w.DailyStreak, &w.LastDaily)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// AdjustCoins adds delta (may be negative) to a wallet, refusing to go below
// zero. The wallet is created first if needed.
func AdjustCoins(ctx context.Context, guildID, userID string, delta int64) (int64, error) {
	if _, err := EnsureWallet(ctx, guildID, userID); err != nil {
		return 0, err
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var coins int64
	if err := tx.QueryRowContext(ctx, `
		SELECT coins FROM users WHERE guild_id = ? AND user_id = ? FOR UPDATE
	`, guildID, userID).Scan(&coins); err != nil {
		return 0, err
	}

	if coins+delta < 0 {
		return coins, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET coins = coins + ? WHERE guild_id = ? AND user_id = ?
	`, delta, guildID, userID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return coins + delta, nil
}

// TransferCoins moves amount between two wallets atomically.
func TransferCoins(ctx context.Context, guildID, fromID, toID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	if _, err := EnsureWallet(ctx, guildID, fromID); err != nil {
		return err
	}
	if _, err := EnsureWallet(ctx, guildID, toID); err != nil {
		return err
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var fromCoins int64
	if err := tx.QueryRowContext(ctx, `
		SELECT coins FROM users WHERE guild_id = ? AND user_id = ? FOR UPDATE
	`, guildID, fromID).Scan(&fromCoins); err != nil {
		return err
	}
	if fromCoins < amount {
		return ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET coins = coins - ? WHERE guild_id = ? AND user_id = ?
	`, amount, guildID, fromID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET coins = coins + ? WHERE guild_id = ? AND user_id = ?
	`, amount, guildID, toID); err != nil {
		return err
	}

	return tx.Commit()
}

// ClaimDaily grants the daily reward once per UTC day, tracking streaks.
// It returns the granted amount, the new streak and the time of the next
// allowed claim. The wallet row stays locked from the cooldown check to the
// grant so two concurrent claims can't both pass it.
func ClaimDaily(ctx context.Context, guildID, userID string, base, streakBonus int64) (int64, int, time.Time, error) {
	if _, err := EnsureWallet(ctx, guildID, userID); err != nil {
		return 0, 0, time.Time{}, err
	}

	now := time.Now().UTC()
	nextClaim := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	defer tx.Rollback()

	var streak int
	var last sql.NullTime
	if err := tx.QueryRowContext(ctx, `
		SELECT daily_streak, last_daily FROM users
		WHERE guild_id = ? AND user_id = ? FOR UPDATE
	`, guildID, userID).Scan(&streak, &last); err != nil {
		return 0, 0, time.Time{}, err
	}

	newStreak, claimable := dailyStreakAfter(last, streak, now)
	if !claimable {
		return 0, streak, nextClaim, nil
	}

	amount := base + int64(newStreak-1)*streakBonus
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET coins = coins + ?, daily_streak = ?, last_daily = ?
		WHERE guild_id = ? AND user_id = ?
	`, amount, newStreak, now, guildID, userID); err != nil {
		return 0, 0, time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, time.Time{}, err
	}
	return amount, newStreak, nextClaim, nil
}

// dailyStreakAfter returns the streak a claim at now would set, and whether
// the claim is allowed at all. Days are UTC calendar days: claiming on the
// day after the last claim continues the streak, any gap resets it.
func dailyStreakAfter(last sql.NullTime, streak int, now time.Time) (int, bool) {
	if !last.Valid {
		return 1, true
	}
	today := now.UTC().Truncate(24 * time.Hour)
	lastDay := last.Time.UTC().Truncate(24 * time.Hour)
	switch {
	case lastDay.Equal(today):
		return streak, false
	case lastDay.Equal(today.Add(-24 * time.Hour)):
		return streak + 1, true
	default:
		return 1, true
	}
}

type WalletRank struct {
	UserID string
	Coins  int64
}

func GetRichest(ctx context.Context, guildID string, limit int) ([]*WalletRank, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT user_id, coins FROM users
		WHERE guild_id = ? ORDER BY coins DESC LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*WalletRank
	for rows.Next() {
		r := &WalletRank{}
		if err := rows.Scan(&r.UserID, &r.Coins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetTotalCoins(ctx context.Context) (int64, int64, error) {
	var wallets, coins sql.NullInt64
	err := DB.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(coins),0) FROM users").Scan(&wallets, &coins)
	return wallets.Int64, coins.Int64, err
}
