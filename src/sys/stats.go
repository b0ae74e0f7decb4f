package sys

import (
	"context"
	"database/sql"
)

// RecordGamePlay bumps the per-game counters after a round finishes.
// coinsDelta is positive for a win, negative for a loss.
func RecordGamePlay(ctx context.Context, guildID, userID, game string, won bool, coinsDelta int64) error {
	wins := 0
	if won {
		wins = 1
	}
	var coinsWon, coinsLost int64
	if coinsDelta > 0 {
		coinsWon = coinsDelta
	} else {
		coinsLost = -coinsDelta
	}
	_, err := DB.ExecContext(ctx, `
		INSERT INTO game_stats (guild_id, user_id, game, plays, wins, coins_won, coins_lost)
		VALUES (?, ?, ?, 1, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			plays = plays + 1,
			wins = wins + VALUES(wins),
			coins_won = coins_won + VALUES(coins_won),
			coins_lost = coins_lost + VALUES(coins_lost)
	`, guildID, userID, game, wins, coinsWon, coinsLost)
	return err
}

type GameStats struct {
	Game      string
	Plays     int
	Wins      int
	CoinsWon  int64
	CoinsLost int64
}

func GetGameStats(ctx context.Context, guildID, userID string) ([]*GameStats, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT game, plays, wins, coins_won, coins_lost FROM game_stats
		WHERE guild_id = ? AND user_id = ? ORDER BY game
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*GameStats
	for rows.Next() {
		s := &GameStats{}
		if err := rows.Scan(&s.Game, &s.Plays, &s.Wins, &s.CoinsWon, &s.CoinsLost); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecordWerewolfResult updates the per-player totals after a game ends.
// wolfWon reports which faction took it; wasWolf whether this player was on
// the wolf side.
func RecordWerewolfResult(ctx context.Context, guildID, userID string, wasWolf, wolfWon bool) error {
	winVillage, winWolf := 0, 0
	if wolfWon && wasWolf {
		winWolf = 1
	}
	if !wolfWon && !wasWolf {
		winVillage = 1
	}
	_, err := DB.ExecContext(ctx, `
		INSERT INTO werewolf_stats (guild_id, user_id, games, wins_village, wins_wolf)
		VALUES (?, ?, 1, ?, ?)
		ON DUPLICATE KEY UPDATE
			games = games + 1,
			wins_village = wins_village + VALUES(wins_village),
			wins_wolf = wins_wolf + VALUES(wins_wolf)
	`, guildID, userID, winVillage, winWolf)
	return err
}

type WerewolfStats struct {
	UserID      string
	Games       int
	WinsVillage int
	WinsWolf    int
}

func GetWerewolfStats(ctx context.Context, guildID, userID string) (*WerewolfStats, error) {
	s := &WerewolfStats{UserID: userID}
	err := DB.QueryRowContext(ctx, `
		SELECT games, wins_village, wins_wolf FROM werewolf_stats
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID).Scan(&s.Games, &s.WinsVillage, &s.WinsWolf)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
