package cmd

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "rank",
		Description: "Show chat level and XP",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Whose rank (defaults to yours)",
				Required:    false,
			},
		},
	}, handleRank)

	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "levels",
		Description: "Chat level leaderboard",
	}, handleLevelsLeaderboard)

	sys.RegisterMessageHandler(grantMessageXP)
}

// grantMessageXP awards XP for ordinary chat messages, respecting the
// per-user cooldown.
func grantMessageXP(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if strings.HasPrefix(m.Content, "/") {
		return
	}

	cfg := sys.GlobalConfig
	ctx, cancel := cmdContext()
	defer cancel()

	newLevel, leveledUp, err := sys.GrantXP(ctx, m.GuildID, m.Author.ID, cfg.XPPerMessage, cfg.XPCooldown)
	if err != nil {
		sys.LogLevels("failed to grant XP: %v", err)
		return
	}
	if leveledUp {
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("🎉 <@%s> reached level **%d**!", m.Author.ID, newLevel))
	}
}

func handleRank(s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := sys.InteractionUser(i)
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["user"]; ok {
		target = opt.UserValue(s)
	}

	ctx, cancel := cmdContext()
	defer cancel()

	entry, err := sys.GetLevel(ctx, i.GuildID, target.ID)
	if err != nil {
		sys.LogLevels("rank lookup failed: %v", err)
		respondError(s, i, "Could not look up that rank.")
		return
	}
	if entry == nil {
		sys.RespondEphemeral(s, i, fmt.Sprintf("<@%s> hasn't earned any XP yet.", target.ID))
		return
	}

	rank, err := sys.GetLevelRank(ctx, i.GuildID, target.ID)
	if err != nil {
		sys.LogLevels("rank position failed: %v", err)
		rank = 0
	}

	next := sys.XPForLevel(entry.Level + 1)
	embed := sys.NewEmbed(fmt.Sprintf("Level %d", entry.Level))
	embed.Description = fmt.Sprintf("<@%s> has **%d** XP (%d to next level).", target.ID, entry.XP, next-entry.XP)
	if rank > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Server rank #%d", rank)}
	}
	sys.RespondEmbed(s, i, embed)
}

func handleLevelsLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := cmdContext()
	defer cancel()

	top, err := sys.GetTopLevels(ctx, i.GuildID, 10)
	if err != nil {
		sys.LogLevels("leaderboard failed: %v", err)
		respondError(s, i, "Could not load the leaderboard.")
		return
	}
	if len(top) == 0 {
		sys.RespondEphemeral(s, i, "Nobody has earned XP yet.")
		return
	}

	embed := sys.NewEmbed("Level Leaderboard")
	for rank, entry := range top {
		embed.Description += fmt.Sprintf("**%d.** <@%s> level %d (%d XP)\n", rank+1, entry.UserID, entry.Level, entry.XP)
	}
	sys.RespondEmbed(s, i, embed)
}
