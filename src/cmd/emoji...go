package cmd

import (
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

var customEmojiPattern = regexp.MustCompile(`<a?:(\w+):(\d+)>`)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "emojistats",
		Description: "Most used custom emoji on this server",
	}, handleEmojiStats)

	sys.RegisterMessageHandler(trackMessageEmoji)
	sys.RegisterReactionHandler(trackReactionEmoji)
}

func trackMessageEmoji(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	matches := customEmojiPattern.FindAllStringSubmatch(m.Content, -1)
	if len(matches) == 0 {
		return
	}

	// Collapse repeats within one message so spam counts once per emoji.
	counts := make(map[[2]string]int64)
	for _, match := range matches {
		counts[[2]string{match[2], match[1]}] = 1
	}

	ctx, cancel := cmdContext()
	defer cancel()
	for key, n := range counts {
		if err := sys.BumpEmojiUsage(ctx, m.GuildID, key[0], key[1], n); err != nil {
			sys.LogError("failed to bump emoji usage: %v", err)
		}
	}
}

func trackReactionEmoji(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || r.Emoji.ID == "" {
		return
	}
	ctx, cancel := cmdContext()
	defer cancel()
	if err := sys.BumpEmojiUsage(ctx, r.GuildID, r.Emoji.ID, r.Emoji.Name, 1); err != nil {
		sys.LogError("failed to bump reaction emoji usage: %v", err)
	}
}

func handleEmojiStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := cmdContext()
	defer cancel()

	top, err := sys.GetTopEmoji(ctx, i.GuildID, 10)
	if err != nil {
		sys.LogError("emoji stats failed: %v", err)
		respondError(s, i, "Could not load emoji stats.")
		return
	}
	if len(top) == 0 {
		sys.RespondEphemeral(s, i, "No custom emoji usage recorded yet.")
		return
	}

	embed := sys.NewEmbed("Emoji Leaderboard")
	for rank, e := range top {
		embed.Description += fmt.Sprintf("**%d.** <:%s:%s> used %d times\n", rank+1, e.EmojiName, e.EmojiID, e.Uses)
	}
	sys.RespondEmbed(s, i, embed)
}
