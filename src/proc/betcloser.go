package proc

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

const betCloserInterval = time.Minute

func init() {
	sys.RegisterDaemon(sys.LogBets, StartBetCloser)
}

// StartBetCloser closes bets whose deadline has passed so late wagers are
// rejected even if nobody runs /bet close.
func StartBetCloser(s *discordgo.Session) {
	go func() {
		ticker := time.NewTicker(betCloserInterval)
		defer ticker.Stop()
		for range ticker.C {
			closeExpiredBets()
		}
	}()
}

func closeExpiredBets() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := sys.GetExpiredOpenBets(ctx)
	if err != nil {
		sys.LogBets("closer failed to list expired bets: %v", err)
		return
	}

	for _, b := range expired {
		if err := sys.CloseBet(ctx, b.ID); err != nil {
			sys.LogBets("failed to auto-close bet %s: %v", b.ID, err)
			continue
		}
		sys.LogBets("auto-closed bet %s (%s)", b.ID, b.Title)
	}
}
