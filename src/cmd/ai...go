package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/ai"
	"github.com/ashvale/ember/src/sys"
)

var aiAgent *ai.Agent

// SetAIAgent wires the relay agent built in main. A nil agent leaves the
// commands registered but disabled.
func SetAIAgent(a *ai.Agent) {
	aiAgent = a
}

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "ask",
		Description: "Ask the bot a question",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "question",
				Description: "What do you want to know?",
				Required:    true,
			},
		},
	}, handleAsk)

	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "forget",
		Description: "Clear the bot's conversation memory for this channel",
	}, handleForget)

	sys.RegisterMessageHandler(relayMention)
}

func handleAsk(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if aiAgent == nil {
		respondError(s, i, sys.ErrAIDisabled)
		return
	}

	var question string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "question" {
			question = opt.StringValue()
		}
	}

	if err := sys.Defer(s, i); err != nil {
		sys.LogAI("failed to defer: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	user := sys.InteractionUser(i)
	answer, err := aiAgent.Reply(ctx, i.GuildID, i.ChannelID, user.ID, question)
	if err != nil {
		sys.EditResponse(s, i, aiErrorMessage(err))
		return
	}
	sys.EditResponse(s, i, clampDiscordMessage(answer))
}

func handleForget(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if aiAgent == nil {
		respondError(s, i, sys.ErrAIDisabled)
		return
	}
	aiAgent.ClearHistory(i.ChannelID)
	sys.RespondEphemeral(s, i, "Conversation memory cleared for this channel.")
}

// relayMention answers plain messages that @mention the bot.
func relayMention(s *discordgo.Session, m *discordgo.MessageCreate) {
	if aiAgent == nil || m.Author == nil || m.Author.Bot {
		return
	}
	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return
	}

	prompt := strings.ReplaceAll(m.Content, fmt.Sprintf("<@%s>", s.State.User.ID), "")
	prompt = strings.ReplaceAll(prompt, fmt.Sprintf("<@!%s>", s.State.User.ID), "")
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return
	}

	s.ChannelTyping(m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	answer, err := aiAgent.Reply(ctx, m.GuildID, m.ChannelID, m.Author.ID, prompt)
	if err != nil {
		if !errors.Is(err, ai.ErrRateLimited) {
			sys.LogAI("mention relay failed: %v", err)
		}
		s.ChannelMessageSendReply(m.ChannelID, aiErrorMessage(err), m.Reference())
		return
	}
	s.ChannelMessageSendReply(m.ChannelID, clampDiscordMessage(answer), m.Reference())
}

func aiErrorMessage(err error) string {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		return sys.ErrAIRateLimited
	case errors.Is(err, ai.ErrDisabled):
		return sys.ErrAIDisabled
	default:
		sys.LogAI("provider error: %v", err)
		return sys.ErrAIFailed
	}
}

// clampDiscordMessage keeps replies under Discord's 2000 char message limit.
func clampDiscordMessage(s string) string {
	if len(s) <= 2000 {
		return s
	}
	return s[:1997] + "..."
}
