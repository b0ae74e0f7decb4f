package cmd

import (
	"context"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

// newRNG returns a per-call generator. Handlers run concurrently and
// *rand.Rand is not safe for shared use; the global source used for seeding
// is locked.
func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(rand.Int63()))
}

// cmdContext bounds every database call made from an interaction handler.
func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// optionMap flattens interaction options for name lookup.
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	if err := sys.RespondEphemeral(s, i, msg); err != nil {
		sys.LogError("Failed to send error response: %v", err)
	}
}
