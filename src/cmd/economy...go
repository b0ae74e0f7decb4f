package cmd

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "coins",
		Description: "Virtual currency",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "balance",
				Description: "Check a wallet",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Whose wallet (defaults to yours)",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "daily",
				Description: "Claim your daily reward",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "pay",
				Description: "Send coins to another member",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Recipient",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "amount",
						Description: "How many coins",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leaderboard",
				Description: "Richest members",
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "balance":
			handleCoinsBalance(s, i, options[0].Options)
		case "daily":
			handleCoinsDaily(s, i)
		case "pay":
			handleCoinsPay(s, i, options[0].Options)
		case "leaderboard":
			handleCoinsLeaderboard(s, i)
		}
	})
}

func handleCoinsBalance(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	target := sys.InteractionUser(i)
	if opt, ok := optionMap(options)["user"]; ok {
		target = opt.UserValue(s)
	}

	ctx, cancel := cmdContext()
	defer cancel()

	w, err := sys.EnsureWallet(ctx, i.GuildID, target.ID)
	if err != nil {
		sys.LogEconomy("balance lookup failed: %v", err)
		respondError(s, i, sys.ErrEconomyGeneric)
		return
	}

	embed := sys.NewEmbed("Wallet")
	embed.Description = fmt.Sprintf("<@%s> has **%d** coins.", target.ID, w.Coins)
	if w.DailyStreak > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Daily streak: %d", w.DailyStreak)}
	}
	sys.RespondEmbed(s, i, embed)
}

func handleCoinsDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	cfg := sys.GlobalConfig

	ctx, cancel := cmdContext()
	defer cancel()

	amount, streak, nextClaim, err := sys.ClaimDaily(ctx, i.GuildID, user.ID, cfg.DailyBase, cfg.DailyStreak)
	if err != nil {
		sys.LogEconomy("daily claim failed: %v", err)
		respondError(s, i, sys.ErrEconomyGeneric)
		return
	}
	if amount == 0 {
		sys.RespondEphemeral(s, i, fmt.Sprintf(sys.MsgEconomyDailyClaimed, nextClaim.Unix()))
		return
	}

	embed := sys.NewEmbed("Daily Reward")
	embed.Description = fmt.Sprintf("You claimed **%d** coins! Streak: **%d** days.", amount, streak)
	sys.RespondEmbed(s, i, embed)
}

func handleCoinsPay(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	from := sys.InteractionUser(i)
	to := opts["user"].UserValue(s)
	amount := opts["amount"].IntValue()

	if amount <= 0 {
		respondError(s, i, sys.ErrEconomyBadAmount)
		return
	}
	if to.ID == from.ID {
		respondError(s, i, sys.ErrEconomySelfPay)
		return
	}
	if to.Bot {
		respondError(s, i, "Bots have no use for coins.")
		return
	}

	ctx, cancel := cmdContext()
	defer cancel()

	if err := sys.TransferCoins(ctx, i.GuildID, from.ID, to.ID, amount); err != nil {
		if errors.Is(err, sys.ErrInsufficientFunds) {
			respondError(s, i, sys.ErrEconomyNotEnoughCoins)
			return
		}
		sys.LogEconomy("transfer failed: %v", err)
		respondError(s, i, sys.ErrEconomyGeneric)
		return
	}

	sys.Respond(s, i, fmt.Sprintf("<@%s> paid **%d** coins to <@%s>.", from.ID, amount, to.ID))
}

func handleCoinsLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := cmdContext()
	defer cancel()

	top, err := sys.GetRichest(ctx, i.GuildID, 10)
	if err != nil {
		sys.LogEconomy("leaderboard failed: %v", err)
		respondError(s, i, sys.ErrEconomyGeneric)
		return
	}
	if len(top) == 0 {
		sys.RespondEphemeral(s, i, "Nobody has any coins yet.")
		return
	}

	embed := sys.NewEmbed("Coin Leaderboard")
	for rank, entry := range top {
		embed.Description += fmt.Sprintf("**%d.** <@%s> with %d coins\n", rank+1, entry.UserID, entry.Coins)
	}
	sys.RespondEmbed(s, i, embed)
}
