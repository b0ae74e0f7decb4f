package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "stocks",
		Description: "Paper trading with coins",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "market",
				Description: "Current prices",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "quote",
				Description: "Price for a single ticker",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionString,
						Name:         "symbol",
						Description:  "Ticker symbol",
						Required:     true,
						Autocomplete: true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "buy",
				Description: "Buy shares",
				Options:     tradeOptions(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sell",
				Description: "Sell shares",
				Options:     tradeOptions(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "portfolio",
				Description: "Your holdings",
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "market":
			handleStocksMarket(s, i)
		case "quote":
			handleStocksQuote(s, i, options[0].Options)
		case "buy":
			handleStocksTrade(s, i, options[0].Options, true)
		case "sell":
			handleStocksTrade(s, i, options[0].Options, false)
		case "portfolio":
			handleStocksPortfolio(s, i)
		}
	})

	sys.RegisterAutocompleteHandler("stocks", handleStocksAutocomplete)
}

func tradeOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "symbol",
			Description:  "Ticker symbol",
			Required:     true,
			Autocomplete: true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "shares",
			Description: "Number of shares",
			Required:    true,
		},
	}
}

func handleStocksMarket(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := cmdContext()
	defer cancel()

	stocks, err := sys.GetAllStocks(ctx)
	if err != nil {
		sys.LogStocks("market listing failed: %v", err)
		respondError(s, i, "Could not load the market.")
		return
	}
	if len(stocks) == 0 {
		sys.RespondEphemeral(s, i, "The market hasn't opened yet.")
		return
	}

	embed := sys.NewEmbed("Market")
	for _, st := range stocks {
		arrow := "▬"
		if st.Price > st.PrevClose {
			arrow = "▲"
		} else if st.Price < st.PrevClose {
			arrow = "▼"
		}
		embed.Description += fmt.Sprintf("%s **%s** %s at %.2f\n", arrow, st.Symbol, st.Name, st.Price)
	}
	sys.RespondEmbed(s, i, embed)
}

func handleStocksQuote(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	symbol := strings.ToUpper(strings.TrimSpace(optionMap(options)["symbol"].StringValue()))

	ctx, cancel := cmdContext()
	defer cancel()

	st, err := sys.GetStock(ctx, symbol)
	if err != nil {
		sys.LogStocks("quote failed: %v", err)
		respondError(s, i, "Could not load that ticker.")
		return
	}
	if st == nil {
		respondError(s, i, fmt.Sprintf("No ticker named `%s`.", symbol))
		return
	}

	change := 0.0
	if st.PrevClose > 0 {
		change = (st.Price - st.PrevClose) / st.PrevClose * 100
	}
	embed := sys.NewEmbed(fmt.Sprintf("%s (%s)", st.Symbol, st.Name))
	embed.Description = fmt.Sprintf("Price: **%.2f** coins\nPrevious close: %.2f (%+.2f%%)", st.Price, st.PrevClose, change)
	sys.RespondEmbed(s, i, embed)
}

func handleStocksTrade(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption, buy bool) {
	opts := optionMap(options)
	symbol := strings.ToUpper(strings.TrimSpace(opts["symbol"].StringValue()))
	shares := opts["shares"].IntValue()
	user := sys.InteractionUser(i)

	if shares <= 0 {
		respondError(s, i, "Share count must be positive.")
		return
	}

	ctx, cancel := cmdContext()
	defer cancel()

	if buy {
		cost, err := sys.BuyShares(ctx, i.GuildID, user.ID, symbol, shares)
		if err != nil {
			switch {
			case errors.Is(err, sys.ErrInsufficientFunds):
				respondError(s, i, fmt.Sprintf("That costs %d coins and you can't cover it.", cost))
			default:
				sys.LogStocks("buy failed: %v", err)
				respondError(s, i, "Trade failed. Check the symbol and try again.")
			}
			return
		}
		sys.Respond(s, i, fmt.Sprintf("🧾 Bought **%d** %s for **%d** coins.", shares, symbol, cost))
		return
	}

	proceeds, err := sys.SellShares(ctx, i.GuildID, user.ID, symbol, shares)
	if err != nil {
		switch {
		case errors.Is(err, sys.ErrInsufficientShares):
			respondError(s, i, "You don't hold that many shares.")
		default:
			sys.LogStocks("sell failed: %v", err)
			respondError(s, i, "Trade failed. Check the symbol and try again.")
		}
		return
	}
	sys.Respond(s, i, fmt.Sprintf("🧾 Sold **%d** %s for **%d** coins.", shares, symbol, proceeds))
}

func handleStocksPortfolio(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	ctx, cancel := cmdContext()
	defer cancel()

	holdings, err := sys.GetHoldings(ctx, i.GuildID, user.ID)
	if err != nil {
		sys.LogStocks("portfolio failed: %v", err)
		respondError(s, i, "Could not load your portfolio.")
		return
	}
	if len(holdings) == 0 {
		sys.RespondEphemeral(s, i, "You don't hold any shares.")
		return
	}

	embed := sys.NewEmbed("Portfolio")
	var total float64
	for _, h := range holdings {
		st, err := sys.GetStock(ctx, h.Symbol)
		if err != nil || st == nil {
			continue
		}
		value := st.Price * float64(h.Shares)
		total += value
		embed.Description += fmt.Sprintf("**%s** %d shares, worth %.2f\n", h.Symbol, h.Shares, value)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Total value: %.2f coins", total)}
	sys.RespondEmbed(s, i, embed)
}

func handleStocksAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := cmdContext()
	defer cancel()

	stocks, err := sys.GetAllStocks(ctx)
	if err != nil {
		return
	}

	var partial string
	for _, opt := range i.ApplicationCommandData().Options {
		for _, sub := range opt.Options {
			if sub.Name == "symbol" && sub.Focused {
				partial = strings.ToUpper(sub.StringValue())
			}
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, st := range stocks {
		if partial != "" && !strings.HasPrefix(st.Symbol, partial) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%s) %.2f", st.Symbol, st.Name, st.Price),
			Value: st.Symbol,
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
