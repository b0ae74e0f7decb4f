package sys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	BetStatusOpen    = "open"
	BetStatusClosed  = "closed"
	BetStatusSettled = "settled"
)

var (
	ErrBetNotOpen     = errors.New("bet is not open")
	ErrBetNotClosed   = errors.New("bet must be closed before settling")
	ErrAlreadyWagered = errors.New("user already wagered on this bet")
)

type Bet struct {
	ID        string
	GuildID   string
	CreatedBy string
	Title     string
	OptionA   string
	OptionB   string
	OddsA     float64
	OddsB     float64
	Status    string
	ClosesAt  sql.NullTime
	Winner    sql.NullString
	CreatedAt time.Time
}

type Wager struct {
	BetID   string
	UserID  string
	Outcome string
	Amount  int64
	Odds    float64
}

type BetPayout struct {
	UserID string
	Amount int64
}

// CreateBet opens a new two-way bet. closesAt may be nil for manual close.
func CreateBet(ctx context.Context, guildID, createdBy, title, optionA, optionB string, oddsA, oddsB float64, closesAt *time.Time) (*Bet, error) {
	b := &Bet{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		CreatedBy: createdBy,
		Title:     title,
		OptionA:   optionA,
		OptionB:   optionB,
		OddsA:     oddsA,
		OddsB:     oddsB,
		Status:    BetStatusOpen,
	}
	var closes interface{}
	if closesAt != nil {
		closes = closesAt.UTC()
		b.ClosesAt = sql.NullTime{Time: closesAt.UTC(), Valid: true}
	}
	_, err := DB.ExecContext(ctx, `
		INSERT INTO bets (id, guild_id, created_by, title, option_a, option_b, odds_a, odds_b, status, closes_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, guildID, createdBy, title, optionA, optionB, oddsA, oddsB, b.Status, closes)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func GetBet(ctx context.Context, betID string) (*Bet, error) {
	b := &Bet{}
	err := DB.QueryRowContext(ctx, `
		SELECT id, guild_id, created_by, title, option_a, option_b, odds_a, odds_b, status, closes_at, winner, created_at
		FROM bets WHERE id = ?
	`, betID).Scan(&b.ID, &b.GuildID, &b.CreatedBy, &b.Title, &b.OptionA, &b.OptionB,
		&b.OddsA, &b.OddsB, &b.Status, &b.ClosesAt, &b.Winner, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func GetOpenBets(ctx context.Context, guildID string) ([]*Bet, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT id, guild_id, created_by, title, option_a, option_b, odds_a, odds_b, status, closes_at, winner, created_at
		FROM bets WHERE guild_id = ? AND status = ? ORDER BY created_at DESC
	`, guildID, BetStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// GetClosedBets returns bets awaiting settlement.
func GetClosedBets(ctx context.Context, guildID string) ([]*Bet, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT id, guild_id, created_by, title, option_a, option_b, odds_a, odds_b, status, closes_at, winner, created_at
		FROM bets WHERE guild_id = ? AND status = ? ORDER BY created_at DESC
	`, guildID, BetStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// GetExpiredOpenBets returns open bets whose close time has passed. Used by
// the closer daemon.
func GetExpiredOpenBets(ctx context.Context) ([]*Bet, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT id, guild_id, created_by, title, option_a, option_b, odds_a, odds_b, status, closes_at, winner, created_at
		FROM bets WHERE status = ? AND closes_at IS NOT NULL AND closes_at <= ?
	`, BetStatusOpen, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

func scanBets(rows *sql.Rows) ([]*Bet, error) {
	var out []*Bet
	for rows.Next() {
		b := &Bet{}
		if err := rows.Scan(&b.ID, &b.GuildID, &b.CreatedBy, &b.Title, &b.OptionA, &b.OptionB,
			&b.OddsA, &b.OddsB, &b.Status, &b.ClosesAt, &b.Winner, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PlaceWager debits the stake and records the wager at the bet's current
// odds. The recorded odds decide the payout even if the line moves later.
func PlaceWager(ctx context.Context, betID, userID, outcome string, amount int64) (*Wager, error) {
	if outcome != "a" && outcome != "b" {
		return nil, fmt.Errorf("outcome must be a or b")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("wager amount must be positive")
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var guildID, status string
	var oddsA, oddsB float64
	var closesAt sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT guild_id, status, odds_a, odds_b, closes_at FROM bets WHERE id = ? FOR UPDATE
	`, betID).Scan(&guildID, &status, &oddsA, &oddsB, &closesAt)
	if err != nil {
		return nil, err
	}
	if status != BetStatusOpen {
		return nil, ErrBetNotOpen
	}
	if closesAt.Valid && time.Now().UTC().After(closesAt.Time) {
		return nil, ErrBetNotOpen
	}

	var existing int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bet_wagers WHERE bet_id = ? AND user_id = ?
	`, betID, userID).Scan(&existing); err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyWagered
	}

	var coins int64
	if err := tx.QueryRowContext(ctx, `
		SELECT coins FROM users WHERE guild_id = ? AND user_id = ? FOR UPDATE
	`, guildID, userID).Scan(&coins); err != nil {
		return nil, err
	}
	if coins < amount {
		return nil, ErrInsufficientFunds
	}

	odds := oddsA
	if outcome == "b" {
		odds = oddsB
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET coins = coins - ? WHERE guild_id = ? AND user_id = ?
	`, amount, guildID, userID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bet_wagers (bet_id, user_id, outcome, amount, odds) VALUES (?, ?, ?, ?, ?)
	`, betID, userID, outcome, amount, odds); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Wager{BetID: betID, UserID: userID, Outcome: outcome, Amount: amount, Odds: odds}, nil
}

// UpdateBetOdds moves the line on an open bet. Existing wagers keep the odds
// they were placed at.
func UpdateBetOdds(ctx context.Context, betID string, oddsA, oddsB float64) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE bets SET odds_a = ?, odds_b = ? WHERE id = ? AND status = ?
	`, oddsA, oddsB, betID, BetStatusOpen)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrBetNotOpen
	}
	return nil
}

// CloseBet stops further wagers without declaring a winner.
func CloseBet(ctx context.Context, betID string) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE bets SET status = ? WHERE id = ? AND status = ?
	`, BetStatusClosed, betID, BetStatusOpen)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrBetNotOpen
	}
	return nil
}

// SettleBet declares the winner and pays every winning wager at its recorded
// odds, all inside one transaction.
func SettleBet(ctx context.Context, betID, winner string) ([]*BetPayout, error) {
	if winner != "a" && winner != "b" {
		return nil, fmt.Errorf("winner must be a or b")
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var guildID, status string
	err = tx.QueryRowContext(ctx, `
		SELECT guild_id, status FROM bets WHERE id = ? FOR UPDATE
	`, betID).Scan(&guildID, &status)
	if err != nil {
		return nil, err
	}
	if status != BetStatusClosed {
		return nil, ErrBetNotClosed
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT user_id, amount, odds FROM bet_wagers WHERE bet_id = ? AND outcome = ?
	`, betID, winner)
	if err != nil {
		return nil, err
	}
	var payouts []*BetPayout
	for rows.Next() {
		var userID string
		var amount int64
		var odds float64
		if err := rows.Scan(&userID, &amount, &odds); err != nil {
			rows.Close()
			return nil, err
		}
		payouts = append(payouts, &BetPayout{
			UserID: userID,
			Amount: int64(math.Floor(float64(amount) * odds)),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range payouts {
		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET coins = coins + ? WHERE guild_id = ? AND user_id = ?
		`, p.Amount, guildID, p.UserID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE bets SET status = ?, winner = ? WHERE id = ?
	`, BetStatusSettled, winner, betID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	LogBets("settled bet %s, %d payouts", betID, len(payouts))
	return payouts, nil
}

func GetWagers(ctx context.Context, betID string) ([]*Wager, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT bet_id, user_id, outcome, amount, odds FROM bet_wagers WHERE bet_id = ?
	`, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Wager
	for rows.Next() {
		w := &Wager{}
		if err := rows.Scan(&w.BetID, &w.UserID, &w.Outcome, &w.Amount, &w.Odds); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
