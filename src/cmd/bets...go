package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sho0pi/naturaltime"

	"github.com/ashvale/ember/src/sys"
)

var betTimeParser *naturaltime.Parser

func init() {
	var err error
	betTimeParser, err = naturaltime.New()
	if err != nil {
		sys.LogFatal("Failed to initialize naturaltime parser: %v", err)
	}

	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "bet",
		Description: "Community betting pools",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "open",
				Description: "Open a two-way bet",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "title",
						Description: "What's the bet about?",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "option_a",
						Description: "First outcome",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "option_b",
						Description: "Second outcome",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "odds_a",
						Description: "Decimal odds for A (default 2.0)",
						Required:    false,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "odds_b",
						Description: "Decimal odds for B (default 2.0)",
						Required:    false,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "closes",
						Description: "When wagering closes (e.g. 'in 2 hours', 'friday at 8pm')",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "place",
				Description: "Place a wager on an open bet",
				Options: []*discordgo.ApplicationCommandOption{
					betIDOption(),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "outcome",
						Description: "Which side",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Option A", Value: "a"},
							{Name: "Option B", Value: "b"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "amount",
						Description: "Coins to stake",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "close",
				Description: "Stop further wagers (creator only)",
				Options:     []*discordgo.ApplicationCommandOption{betIDOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "settle",
				Description: "Declare the winner and pay out (creator only)",
				Options: []*discordgo.ApplicationCommandOption{
					betIDOption(),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "winner",
						Description: "Winning side",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Option A", Value: "a"},
							{Name: "Option B", Value: "b"},
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Open bets on this server",
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "open":
			handleBetOpen(s, i, options[0].Options)
		case "place":
			handleBetPlace(s, i, options[0].Options)
		case "close":
			handleBetClose(s, i, options[0].Options)
		case "settle":
			handleBetSettle(s, i, options[0].Options)
		case "list":
			handleBetList(s, i)
		}
	})

	sys.RegisterAutocompleteHandler("bet", handleBetAutocomplete)
}

func betIDOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "bet",
		Description:  "Which bet",
		Required:     true,
		Autocomplete: true,
	}
}

func handleBetOpen(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	user := sys.InteractionUser(i)

	title := opts["title"].StringValue()
	optionA := opts["option_a"].StringValue()
	optionB := opts["option_b"].StringValue()

	oddsA, oddsB := 2.0, 2.0
	if opt, ok := opts["odds_a"]; ok {
		oddsA = opt.FloatValue()
	}
	if opt, ok := opts["odds_b"]; ok {
		oddsB = opt.FloatValue()
	}
	if oddsA <= 1.0 || oddsB <= 1.0 {
		respondError(s, i, "Odds must be greater than 1.0.")
		return
	}

	var closesAt *time.Time
	if opt, ok := opts["closes"]; ok {
		parsed, err := betTimeParser.ParseDate(opt.StringValue(), time.Now())
		if err != nil || parsed == nil {
			respondError(s, i, "I couldn't understand that close time. Try 'in 2 hours' or 'friday at 8pm'.")
			return
		}
		if parsed.Before(time.Now()) {
			respondError(s, i, "The close time is in the past.")
			return
		}
		closesAt = parsed
	}

	ctx, cancel := cmdContext()
	defer cancel()

	b, err := sys.CreateBet(ctx, i.GuildID, user.ID, title, optionA, optionB, oddsA, oddsB, closesAt)
	if err != nil {
		sys.LogBets("failed to open bet: %v", err)
		respondError(s, i, "Could not open the bet.")
		return
	}

	embed := sys.NewEmbed("📋 " + title)
	embed.Description = fmt.Sprintf("**A:** %s at %.2f\n**B:** %s at %.2f", optionA, oddsA, optionB, oddsB)
	if closesAt != nil {
		embed.Description += fmt.Sprintf("\nCloses <t:%d:R>", closesAt.Unix())
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Wager with /bet place"}
	sys.RespondEmbed(s, i, embed)
	sys.LogBets("bet %s opened by %s", b.ID, user.ID)
}

func handleBetPlace(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	user := sys.InteractionUser(i)
	betID := opts["bet"].StringValue()
	outcome := opts["outcome"].StringValue()
	amount := opts["amount"].IntValue()

	ctx, cancel := cmdContext()
	defer cancel()

	w, err := sys.PlaceWager(ctx, betID, user.ID, outcome, amount)
	if err != nil {
		switch {
		case errors.Is(err, sys.ErrBetNotOpen):
			respondError(s, i, "That bet is no longer taking wagers.")
		case errors.Is(err, sys.ErrAlreadyWagered):
			respondError(s, i, "You already have a wager on that bet.")
		case errors.Is(err, sys.ErrInsufficientFunds):
			respondError(s, i, sys.ErrEconomyNotEnoughCoins)
		default:
			sys.LogBets("failed to place wager: %v", err)
			respondError(s, i, "Could not place the wager.")
		}
		return
	}

	potential := int64(float64(amount) * w.Odds)
	sys.Respond(s, i, fmt.Sprintf("<@%s> staked **%d** coins on **%s** at %.2f (pays %d).",
		user.ID, amount, outcome, w.Odds, potential))
}

func handleBetClose(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	betID := optionMap(options)["bet"].StringValue()
	user := sys.InteractionUser(i)

	ctx, cancel := cmdContext()
	defer cancel()

	b, err := sys.GetBet(ctx, betID)
	if err != nil || b == nil {
		respondError(s, i, "Unknown bet.")
		return
	}
	if b.CreatedBy != user.ID && !sys.GlobalConfig.IsOwner(user.ID) {
		respondError(s, i, "Only the bet's creator can close it.")
		return
	}

	if err := sys.CloseBet(ctx, betID); err != nil {
		respondError(s, i, "That bet is not open.")
		return
	}
	sys.Respond(s, i, fmt.Sprintf("Wagering closed on **%s**. Settle it with /bet settle.", b.Title))
}

func handleBetSettle(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	betID := opts["bet"].StringValue()
	winner := opts["winner"].StringValue()
	user := sys.InteractionUser(i)

	ctx, cancel := cmdContext()
	defer cancel()

	b, err := sys.GetBet(ctx, betID)
	if err != nil || b == nil {
		respondError(s, i, "Unknown bet.")
		return
	}
	if b.CreatedBy != user.ID && !sys.GlobalConfig.IsOwner(user.ID) {
		respondError(s, i, "Only the bet's creator can settle it.")
		return
	}

	payouts, err := sys.SettleBet(ctx, betID, winner)
	if err != nil {
		if errors.Is(err, sys.ErrBetNotClosed) {
			respondError(s, i, "Close the bet before settling it.")
			return
		}
		sys.LogBets("failed to settle: %v", err)
		respondError(s, i, "Could not settle the bet.")
		return
	}

	winningOption := b.OptionA
	if winner == "b" {
		winningOption = b.OptionB
	}
	embed := sys.NewEmbed("🏁 " + b.Title)
	embed.Description = fmt.Sprintf("**%s** wins!\n", winningOption)
	if len(payouts) == 0 {
		embed.Description += "No winning wagers."
	}
	for _, p := range payouts {
		embed.Description += fmt.Sprintf("<@%s> collects **%d** coins\n", p.UserID, p.Amount)
	}
	sys.RespondEmbed(s, i, embed)
}

func handleBetList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := cmdContext()
	defer cancel()

	bets, err := sys.GetOpenBets(ctx, i.GuildID)
	if err != nil {
		sys.LogBets("list failed: %v", err)
		respondError(s, i, "Could not list bets.")
		return
	}
	if len(bets) == 0 {
		sys.RespondEphemeral(s, i, "No open bets. Start one with /bet open.")
		return
	}

	embed := sys.NewEmbed("Open Bets")
	for _, b := range bets {
		line := fmt.Sprintf("**%s**\nA: %s (%.2f) vs B: %s (%.2f)", b.Title, b.OptionA, b.OddsA, b.OptionB, b.OddsB)
		if b.ClosesAt.Valid {
			line += fmt.Sprintf("\nCloses <t:%d:R>", b.ClosesAt.Time.Unix())
		}
		embed.Description += line + "\n\n"
	}
	sys.RespondEmbed(s, i, embed)
}

func handleBetAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := cmdContext()
	defer cancel()

	bets, err := sys.GetOpenBets(ctx, i.GuildID)
	if err != nil {
		return
	}

	// Close/settle also need bets that already stopped taking wagers.
	sub := ""
	if opts := i.ApplicationCommandData().Options; len(opts) > 0 {
		sub = opts[0].Name
	}
	if sub == "settle" {
		closed, err := sys.GetClosedBets(ctx, i.GuildID)
		if err == nil {
			bets = append(bets, closed...)
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, b := range bets {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  betTruncate(b.Title, 100),
			Value: b.ID,
		})
		if len(choices) == 25 {
			break
		}
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

func betTruncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
