package sys

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var commands = []*discordgo.ApplicationCommand{}
var commandHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){}
var autocompleteHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){}
var componentHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){}
var messageHandlers []func(s *discordgo.Session, m *discordgo.MessageCreate)
var reactionHandlers []func(s *discordgo.Session, r *discordgo.MessageReactionAdd)
var voiceHandlers []func(s *discordgo.Session, v *discordgo.VoiceStateUpdate)
var interactionCallbacks = []func(){}
var onSessionReadyCallbacks []func(s *discordgo.Session)

// CreateSession creates and opens a Discord session with all required intents and handlers configured.
func CreateSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	s.AddHandler(InteractionHandler)
	s.AddHandler(messageCreateHandler)
	s.AddHandler(reactionAddHandler)
	s.AddHandler(voiceStateHandler)

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildEmojis

	if err := s.Open(); err != nil {
		return nil, err
	}

	return s, nil
}

func RegisterInteractionCallback(f func()) {
	interactionCallbacks = append(interactionCallbacks, f)
}

func RegisterCommand(cmd *discordgo.ApplicationCommand, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	commands = append(commands, cmd)
	commandHandlers[cmd.Name] = handler
}

func RegisterAutocompleteHandler(cmdName string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	autocompleteHandlers[cmdName] = handler
}

// RegisterComponentHandler registers a handler for component interactions.
// Custom IDs are prefix-matched, so games can encode state after the prefix
// (e.g. "bj:hit:<gameID>").
func RegisterComponentHandler(customIDPrefix string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	componentHandlers[customIDPrefix] = handler
}

func RegisterMessageHandler(handler func(s *discordgo.Session, m *discordgo.MessageCreate)) {
	messageHandlers = append(messageHandlers, handler)
}

func RegisterReactionHandler(handler func(s *discordgo.Session, r *discordgo.MessageReactionAdd)) {
	reactionHandlers = append(reactionHandlers, handler)
}

func RegisterVoiceHandler(handler func(s *discordgo.Session, v *discordgo.VoiceStateUpdate)) {
	voiceHandlers = append(voiceHandlers, handler)
}

func OnSessionReady(cb func(s *discordgo.Session)) {
	onSessionReadyCallbacks = append(onSessionReadyCallbacks, cb)
}

func TriggerSessionReady(s *discordgo.Session) {
	for _, cb := range onSessionReadyCallbacks {
		cb(s)
	}
}

func RegisterCommands(s *discordgo.Session, guildID string) error {
	LogInfo(MsgLoaderRegistering)

	// If a guild ID is provided, register commands to that guild AND clear global commands.
	if guildID != "" {
		LogInfo(MsgLoaderGuildRegister, guildID)
		createdCommands, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, commands)
		if err != nil {
			return fmt.Errorf("failed to register guild commands: %w", err)
		}
		for _, cmd := range createdCommands {
			LogInfo(MsgLoaderCommandRegistered, cmd.Name)
		}

		// Clear global commands to remove old ones
		LogInfo(MsgLoaderGlobalClear)
		_, err = s.ApplicationCommandBulkOverwrite(s.State.User.ID, "", []*discordgo.ApplicationCommand{})
		if err != nil {
			LogWarn(MsgLoaderGlobalClearFail, err)
		} else {
			LogInfo(MsgLoaderGlobalCleared)
		}

		return nil
	}

	// Otherwise, register commands globally
	LogInfo(MsgLoaderRegisteringGlobal)
	createdCommands, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, "", commands)
	if err != nil {
		return fmt.Errorf(MsgLoaderRegisterGlobalFail, err)
	}
	for _, cmd := range createdCommands {
		LogInfo(MsgLoaderGlobalRegistered, cmd.Name)
	}
	return nil
}

func InteractionHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	for _, f := range interactionCallbacks {
		go f()
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if h, ok := commandHandlers[name]; ok {
			go func() {
				defer recoverHandler("command " + name)
				h(s, i)
			}()
			go logCommandInvocation(i)
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		if h, ok := autocompleteHandlers[i.ApplicationCommandData().Name]; ok {
			go h(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		for prefix, h := range componentHandlers {
			if strings.HasPrefix(customID, prefix) {
				handler := h
				go func() {
					defer recoverHandler("component " + customID)
					handler(s, i)
				}()
				return
			}
		}
	}
}

func messageCreateHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	for _, h := range messageHandlers {
		handler := h
		go func() {
			defer recoverHandler("message")
			handler(s, m)
		}()
	}
}

func reactionAddHandler(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	for _, h := range reactionHandlers {
		go h(s, r)
	}
}

func voiceStateHandler(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	for _, h := range voiceHandlers {
		go h(s, v)
	}
}

func recoverHandler(what string) {
	if r := recover(); r != nil {
		LogError("Panic in %s handler: %v", what, r)
	}
}

// Daemon registry
type daemonEntry struct {
	starter func(s *discordgo.Session)
	logger  func(format string, v ...interface{})
}

var registeredDaemons []daemonEntry

// RegisterDaemon registers a background daemon with a logger and start function.
func RegisterDaemon(logger func(format string, v ...interface{}), starter func(s *discordgo.Session)) {
	registeredDaemons = append(registeredDaemons, daemonEntry{starter: starter, logger: logger})
}

// StartDaemons starts all registered daemons with their individual colored logging.
func StartDaemons(s *discordgo.Session) {
	for _, daemon := range registeredDaemons {
		daemon.logger("Starting...")
		daemon.starter(s)
	}
}
