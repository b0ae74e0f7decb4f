package sys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInsufficientShares = errors.New("insufficient shares")

type Stock struct {
	Symbol    string
	Name      string
	Price     float64
	PrevClose float64
	UpdatedAt time.Time
}

type Holding struct {
	Symbol string
	Shares int64
}

// SeedStocks inserts the default tickers if the table is empty.
func SeedStocks(ctx context.Context, seed []*Stock) error {
	var n int64
	if err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM stocks").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, s := range seed {
		if _, err := DB.ExecContext(ctx, `
			INSERT INTO stocks (symbol, name, price, prev_close) VALUES (?, ?, ?, ?)
		`, s.Symbol, s.Name, s.Price, s.Price); err != nil {
			return err
		}
	}
	LogStocks("seeded %d tickers", len(seed))
	return nil
}

func GetStock(ctx context.Context, symbol string) (*Stock, error) {
	s := &Stock{}
	err := DB.QueryRowContext(ctx, `
		SELECT symbol, name, price, prev_close, updated_at FROM stocks WHERE symbol = ?
	`, symbol).Scan(&s.Symbol, &s.Name, &s.Price, &s.PrevClose, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func GetAllStocks(ctx context.Context) ([]*Stock, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT symbol, name, price, prev_close, updated_at FROM stocks ORDER BY symbol
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Stock
	for rows.Next() {
		s := &Stock{}
		if err := rows.Scan(&s.Symbol, &s.Name, &s.Price, &s.PrevClose, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func UpdateStockPrice(ctx context.Context, symbol string, price float64) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE stocks SET prev_close = price, price = ? WHERE symbol = ?
	`, price, symbol)
	return err
}

// BuyShares debits the buyer's wallet and credits the holding in one
// transaction at the current price.
func BuyShares(ctx context.Context, guildID, userID, symbol string, shares int64) (int64, error) {
	if shares <= 0 {
		return 0, fmt.Errorf("share count must be positive")
	}
	if _, err := EnsureWallet(ctx, guildID, userID); err != nil {
		return 0, err
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var price float64
	if err := tx.QueryRowContext(ctx, `
		SELECT price FROM stocks WHERE symbol = ? FOR UPDATE
	`, symbol).Scan(&price); err != nil {
		return 0, err
	}
	cost := int64(math.Ceil(price * float64(shares)))

	var coins int64
	if err := tx.QueryRowContext(ctx, `
		SELECT coins FROM users WHERE guild_id = ? AND user_id = ? FOR UPDATE
	`, guildID, userID).Scan(&coins); err != nil {
		return 0, err
	}
	if coins < cost {
		return cost, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET coins = coins - ? WHERE guild_id = ? AND user_id = ?
	`, cost, guildID, userID); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stock_holdings (guild_id, user_id, symbol, shares)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE shares = shares + VALUES(shares)
	`, guildID, userID, symbol, shares); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return cost, nil
}

// SellShares liquidates shares at the current price, floor-rounded in the
// house's favor.
func SellShares(ctx context.Context, guildID, userID, symbol string, shares int64) (int64, error) {
	if shares <= 0 {
		return 0, fmt.Errorf("share count must be positive")
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var price float64
	if err := tx.QueryRowContext(ctx, `
		SELECT price FROM stocks WHERE symbol = ? FOR UPDATE
	`, symbol).Scan(&price); err != nil {
		return 0, err
	}

	var held int64
	err = tx.QueryRowContext(ctx, `
		SELECT shares FROM stock_holdings
		WHERE guild_id = ? AND user_id = ? AND symbol = ? FOR UPDATE
	`, guildID, userID, symbol).Scan(&held)
	if err == sql.ErrNoRows || (err == nil && held < shares) {
		return 0, ErrInsufficientShares
	}
	if err != nil {
		return 0, err
	}

	proceeds := int64(math.Floor(price * float64(shares)))

	if _, err := tx.ExecContext(ctx, `
		UPDATE stock_holdings SET shares = shares - ?
		WHERE guild_id = ? AND user_id = ? AND symbol = ?
	`, shares, guildID, userID, symbol); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM stock_holdings
		WHERE guild_id = ? AND user_id = ? AND symbol = ? AND shares = 0
	`, guildID, userID, symbol); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET coins = coins + ? WHERE guild_id = ? AND user_id = ?
	`, proceeds, guildID, userID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return proceeds, nil
}

func GetHoldings(ctx context.Context, guildID, userID string) ([]*Holding, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT symbol, shares FROM stock_holdings
		WHERE guild_id = ? AND user_id = ? AND shares > 0 ORDER BY symbol
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Holding
	for rows.Next() {
		h := &Holding{}
		if err := rows.Scan(&h.Symbol, &h.Shares); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
