package cmd

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/game"
	"github.com/ashvale/ember/src/sys"
)

var (
	werewolfMu    sync.Mutex
	werewolfGames = map[string]*game.WerewolfGame{} // keyed by channel ID
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "werewolf",
		Description: "Social deduction game",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "new",
				Description: "Open a lobby in this channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "act",
				Description: "Use your night ability on a player",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "target",
						Description: "Who to target",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "vote",
				Description: "Vote to lynch a player",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "target",
						Description: "Who to lynch",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stats",
				Description: "Your werewolf record",
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "new":
			handleWerewolfNew(s, i)
		case "act":
			handleWerewolfAct(s, i, options[0].Options)
		case "vote":
			handleWerewolfVote(s, i, options[0].Options)
		case "stats":
			handleWerewolfStats(s, i)
		}
	})

	sys.RegisterComponentHandler("ww:", handleWerewolfButton)
}

func werewolfGame(channelID string) *game.WerewolfGame {
	werewolfMu.Lock()
	defer werewolfMu.Unlock()
	return werewolfGames[channelID]
}

// openWerewolfLobby publishes a fresh lobby with the creator already joined,
// all under the lock so no button press can observe an empty lobby.
func openWerewolfLobby(channelID, creatorID string) bool {
	werewolfMu.Lock()
	defer werewolfMu.Unlock()

	if g, ok := werewolfGames[channelID]; ok && g.Phase != game.PhaseOver {
		return false
	}
	g := game.NewWerewolfGame(channelID)
	g.Join(creatorID)
	werewolfGames[channelID] = g
	return true
}

func handleWerewolfNew(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	if !openWerewolfLobby(i.ChannelID, user.ID) {
		respondError(s, i, "A game is already running in this channel.")
		return
	}

	embed := sys.NewEmbed("Werewolf")
	embed.Description = fmt.Sprintf(
		"<@%s> opened a lobby! %d to %d players.\n\n**Players (1):** <@%s>",
		user.ID, game.WerewolfMinPlayers, game.WerewolfMaxPlayers, user.ID)
	sys.RespondComponents(s, i, "", embed, []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Join", Style: discordgo.PrimaryButton, CustomID: "ww:join"},
				discordgo.Button{Label: "Start", Style: discordgo.SuccessButton, CustomID: "ww:start"},
			},
		},
	})
	sys.LogWerewolf("lobby opened in channel %s", i.ChannelID)
}

func handleWerewolfButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	g := werewolfGame(i.ChannelID)
	if g == nil {
		respondError(s, i, "No game in this channel. Start one with /werewolf new.")
		return
	}
	user := sys.InteractionUser(i)

	switch i.MessageComponentData().CustomID {
	case "ww:join":
		werewolfMu.Lock()
		err := g.Join(user.ID)
		players := lobbyMentions(g)
		count := len(g.Players)
		werewolfMu.Unlock()

		if errors.Is(err, game.ErrAlreadyJoined) {
			respondError(s, i, "You're already in.")
			return
		}
		if err != nil {
			respondError(s, i, "Can't join this lobby right now.")
			return
		}

		embed := sys.NewEmbed("Werewolf")
		embed.Description = fmt.Sprintf("**Players (%d):** %s", count, players)
		sys.UpdateMessage(s, i, "", embed, i.Message.Components)

	case "ww:start":
		werewolfMu.Lock()
		err := g.Start(newRNG())
		werewolfMu.Unlock()

		if errors.Is(err, game.ErrNotEnough) {
			respondError(s, i, fmt.Sprintf("Need at least %d players.", game.WerewolfMinPlayers))
			return
		}
		if err != nil {
			respondError(s, i, "The game has already started.")
			return
		}

		embed := sys.NewEmbed("Night 1 🌙")
		embed.Description = "Roles have been dealt! Check your DMs.\nSpecial roles: use `/werewolf act` to pick a target."
		sys.UpdateMessage(s, i, "", embed, []discordgo.MessageComponent{})
		dmRoles(s, g)
		sys.LogWerewolf("game started in channel %s with %d players", i.ChannelID, len(g.Players))
	}
}

func lobbyMentions(g *game.WerewolfGame) string {
	var b strings.Builder
	first := true
	for _, p := range g.Players {
		if !first {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "<@%s>", p.UserID)
		first = false
	}
	return b.String()
}

func dmRoles(s *discordgo.Session, g *game.WerewolfGame) {
	for _, p := range g.Players {
		ch, err := s.UserChannelCreate(p.UserID)
		if err != nil {
			sys.LogWerewolf("failed to open DM with %s: %v", p.UserID, err)
			continue
		}
		s.ChannelMessageSend(ch.ID, fmt.Sprintf("Your role: **%s**", p.Role))
	}
}

func handleWerewolfAct(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	g := werewolfGame(i.ChannelID)
	if g == nil {
		respondError(s, i, "No game in this channel.")
		return
	}
	user := sys.InteractionUser(i)
	target := optionMap(options)["target"].UserValue(s)

	werewolfMu.Lock()
	seen, err := g.NightAction(user.ID, target.ID)
	isSeer := err == nil && g.Players[user.ID].Role == game.RoleSeer
	complete := err == nil && g.NightComplete()
	werewolfMu.Unlock()

	switch {
	case errors.Is(err, game.ErrWrongPhase):
		respondError(s, i, "It's not night, or you have no night ability.")
		return
	case err != nil:
		respondError(s, i, "That target isn't a living player.")
		return
	}

	reply := "Action locked in."
	if isSeer {
		reply = fmt.Sprintf("Your vision: <@%s> is a **%s**.", target.ID, seen)
	}
	sys.RespondEphemeral(s, i, reply)

	if complete {
		resolveWerewolfNight(s, i.ChannelID, g)
	}
}

func resolveWerewolfNight(s *discordgo.Session, channelID string, g *game.WerewolfGame) {
	werewolfMu.Lock()
	killed, err := g.ResolveNight()
	over := g.Phase == game.PhaseOver
	werewolfMu.Unlock()
	if err != nil {
		return
	}

	msg := "☀️ The sun rises. Nobody died in the night."
	if killed != "" {
		msg = fmt.Sprintf("☀️ The sun rises over a grim scene: <@%s> was killed in the night.", killed)
	}
	if !over {
		msg += "\nDiscuss, then `/werewolf vote` to lynch."
	}
	s.ChannelMessageSend(channelID, msg)

	if over {
		announceWerewolfEnd(s, channelID, g)
	}
}

func handleWerewolfVote(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	g := werewolfGame(i.ChannelID)
	if g == nil {
		respondError(s, i, "No game in this channel.")
		return
	}
	user := sys.InteractionUser(i)
	target := optionMap(options)["target"].UserValue(s)

	werewolfMu.Lock()
	err := g.Vote(user.ID, target.ID)
	allVoted := err == nil && g.VotesCast() == g.AliveCount()
	werewolfMu.Unlock()

	switch {
	case errors.Is(err, game.ErrWrongPhase):
		respondError(s, i, "Voting only happens during the day.")
		return
	case errors.Is(err, game.ErrDeadPlayer):
		respondError(s, i, "The dead don't vote.")
		return
	case err != nil:
		respondError(s, i, "That target isn't a living player.")
		return
	}

	sys.Respond(s, i, fmt.Sprintf("<@%s> votes for <@%s>.", user.ID, target.ID))

	if allVoted {
		werewolfMu.Lock()
		lynched, err := g.ResolveDay()
		over := g.Phase == game.PhaseOver
		round := g.Round
		werewolfMu.Unlock()
		if err != nil {
			return
		}

		msg := "The vote was tied. Nobody hangs today."
		if lynched != "" {
			msg = fmt.Sprintf("The village has spoken: <@%s> is lynched.", lynched)
		}
		if !over {
			msg += fmt.Sprintf("\n🌙 Night %d falls. Special roles, use `/werewolf act`.", round)
		}
		s.ChannelMessageSend(i.ChannelID, msg)

		if over {
			announceWerewolfEnd(s, i.ChannelID, g)
		}
	}
}

func announceWerewolfEnd(s *discordgo.Session, channelID string, g *game.WerewolfGame) {
	winners := "The **village** wins! 🎉"
	if g.WolvesWon {
		winners = "The **werewolves** win! 🐺"
	}

	var reveal strings.Builder
	for _, p := range g.Players {
		fmt.Fprintf(&reveal, "<@%s> was a **%s**\n", p.UserID, p.Role)
	}
	embed := sys.NewEmbed("Game Over")
	embed.Description = winners + "\n\n" + reveal.String()
	s.ChannelMessageSendEmbed(channelID, embed)

	ctx, cancel := cmdContext()
	defer cancel()
	guildID := ""
	if ch, err := s.State.Channel(channelID); err == nil {
		guildID = ch.GuildID
	}
	for _, p := range g.Players {
		wasWolf := p.Role == game.RoleWerewolf
		if err := sys.RecordWerewolfResult(ctx, guildID, p.UserID, wasWolf, g.WolvesWon); err != nil {
			sys.LogWerewolf("failed to record result for %s: %v", p.UserID, err)
		}
	}

	werewolfMu.Lock()
	delete(werewolfGames, channelID)
	werewolfMu.Unlock()
	sys.LogWerewolf("game over in channel %s, wolves won: %v", channelID, g.WolvesWon)
}

func handleWerewolfStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	ctx, cancel := cmdContext()
	defer cancel()

	stats, err := sys.GetWerewolfStats(ctx, i.GuildID, user.ID)
	if err != nil {
		sys.LogWerewolf("stats lookup failed: %v", err)
		respondError(s, i, "Could not load your stats.")
		return
	}
	if stats == nil {
		sys.RespondEphemeral(s, i, "You haven't played yet.")
		return
	}

	embed := sys.NewEmbed("Werewolf Record")
	embed.Description = fmt.Sprintf(
		"Games: **%d**\nVillage wins: **%d**\nWolf wins: **%d**",
		stats.Games, stats.WinsVillage, stats.WinsWolf)
	sys.RespondEmbed(s, i, embed)
}
