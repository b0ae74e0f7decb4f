package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

var botStartTime = time.Now()

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "debug",
		Description: "Bot diagnostics",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Uptime and runtime stats",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "config",
				Description: "Read a bot_config value (owner only)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "key",
						Description: "Config key",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "echo",
				Description: "Echo a message back",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "message",
						Description: "What to echo",
						Required:    true,
					},
				},
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "status":
			handleDebugStatus(s, i)
		case "config":
			handleDebugConfig(s, i, options[0].Options)
		case "echo":
			handleDebugEcho(s, i, options[0].Options)
		}
	})
}

func handleDebugStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	ctx, cancel := cmdContext()
	defer cancel()
	commandCount, _ := sys.GetCommandCount(ctx)

	embed := sys.NewEmbed("Status")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Uptime", Value: time.Since(botStartTime).Round(time.Second).String(), Inline: true},
		{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
		{Name: "Heap", Value: fmt.Sprintf("%.1f MiB", float64(mem.HeapAlloc)/1024/1024), Inline: true},
		{Name: "Commands served", Value: fmt.Sprintf("%d", commandCount), Inline: true},
		{Name: "Latency", Value: s.HeartbeatLatency().Round(time.Millisecond).String(), Inline: true},
	}
	sys.RespondEmbed(s, i, embed)
}

func handleDebugConfig(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := sys.InteractionUser(i)
	if !sys.GlobalConfig.IsOwner(user.ID) {
		respondError(s, i, "Owner only.")
		return
	}

	key := optionMap(options)["key"].StringValue()
	ctx, cancel := cmdContext()
	defer cancel()

	value, err := sys.GetBotConfig(ctx, key)
	if err != nil {
		respondError(s, i, "Lookup failed.")
		return
	}
	if value == "" {
		sys.RespondEphemeral(s, i, fmt.Sprintf("`%s` is not set.", key))
		return
	}
	sys.RespondEphemeral(s, i, fmt.Sprintf("`%s` = `%s`", key, value))
}

func handleDebugEcho(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	msg := optionMap(options)["message"].StringValue()
	sys.RespondEphemeral(s, i, msg)
}
