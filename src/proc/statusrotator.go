package proc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

const statusInterval = 5 * time.Minute

func init() {
	sys.RegisterDaemon(sys.LogStatus, StartStatusRotator)
}

// StartStatusRotator cycles the bot presence through live server stats.
func StartStatusRotator(s *discordgo.Session) {
	go func() {
		rotateStatus(s)
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for range ticker.C {
			rotateStatus(s)
		}
	}()
}

func rotateStatus(s *discordgo.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	generators := []func(context.Context) string{
		func(ctx context.Context) string {
			wallets, coins, err := sys.GetTotalCoins(ctx)
			if err != nil || wallets == 0 {
				return ""
			}
			return fmt.Sprintf("%d coins across %d wallets", coins, wallets)
		},
		func(ctx context.Context) string {
			n, err := sys.GetCommandCount(ctx)
			if err != nil || n == 0 {
				return ""
			}
			return fmt.Sprintf("%d commands served", n)
		},
		func(ctx context.Context) string {
			summary, err := sys.GetAIUsageSummary(ctx)
			if err != nil || summary.Requests == 0 {
				return ""
			}
			return fmt.Sprintf("%d questions answered", summary.Requests)
		},
		func(ctx context.Context) string {
			return "/casino, /rpg, /werewolf"
		},
	}

	// Try a random generator first, fall through to the static one.
	status := ""
	for _, idx := range rand.Perm(len(generators)) {
		if status = generators[idx](ctx); status != "" {
			break
		}
	}

	if err := s.UpdateWatchStatus(0, status); err != nil {
		sys.LogStatus("failed to update presence: %v", err)
		return
	}
	sys.LogStatus("presence set to %q", status)
}
