package cmd

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "voicehub",
		Description: "Temporary voice channels",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Mark a voice channel as the hub (joining it spawns a personal channel)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "The hub voice channel",
						Required:    true,
						ChannelTypes: []discordgo.ChannelType{
							discordgo.ChannelTypeGuildVoice,
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "clear",
				Description: "Disable the voice hub",
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "set":
			handleVoiceHubSet(s, i, options[0].Options)
		case "clear":
			handleVoiceHubClear(s, i)
		}
	})

	sys.RegisterVoiceHandler(onVoiceStateUpdate)
}

func handleVoiceHubSet(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := sys.InteractionUser(i)
	if !sys.GlobalConfig.IsOwner(user.ID) && !hasManageChannels(i) {
		respondError(s, i, "You need Manage Channels to configure the hub.")
		return
	}

	ch := optionMap(options)["channel"].ChannelValue(s)
	ctx, cancel := cmdContext()
	defer cancel()

	if err := sys.SetVoiceHub(ctx, i.GuildID, ch.ID); err != nil {
		sys.LogVoice("failed to set hub: %v", err)
		respondError(s, i, "Could not save the hub channel.")
		return
	}
	sys.Respond(s, i, fmt.Sprintf("Voice hub set to <#%s>. Joining it creates a personal channel.", ch.ID))
	sys.LogVoice("hub for guild %s set to channel %s", i.GuildID, ch.ID)
}

func handleVoiceHubClear(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	if !sys.GlobalConfig.IsOwner(user.ID) && !hasManageChannels(i) {
		respondError(s, i, "You need Manage Channels to configure the hub.")
		return
	}

	ctx, cancel := cmdContext()
	defer cancel()
	if err := sys.ClearVoiceHub(ctx, i.GuildID); err != nil {
		sys.LogVoice("failed to clear hub: %v", err)
		respondError(s, i, "Could not clear the hub channel.")
		return
	}
	sys.Respond(s, i, "Voice hub disabled.")
}

func hasManageChannels(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionManageChannels != 0
}

// onVoiceStateUpdate spawns a personal channel when someone joins the hub
// and tears empty personal channels down when their last occupant leaves.
func onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.GuildID == "" {
		return
	}
	ctx, cancel := cmdContext()
	defer cancel()

	hubID, err := sys.GetVoiceHub(ctx, v.GuildID)
	if err != nil {
		sys.LogVoice("hub lookup failed: %v", err)
		return
	}

	if hubID != "" && v.ChannelID == hubID {
		spawnTempChannel(ctx, s, v, hubID)
	}

	// Check the channel the user just left.
	if v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != "" && v.BeforeUpdate.ChannelID != v.ChannelID {
		reapIfEmpty(ctx, s, v.GuildID, v.BeforeUpdate.ChannelID)
	}
}

func spawnTempChannel(ctx context.Context, s *discordgo.Session, v *discordgo.VoiceStateUpdate, hubID string) {
	hub, err := s.Channel(hubID)
	if err != nil {
		sys.LogVoice("failed to fetch hub channel: %v", err)
		return
	}

	name := "Voice Room"
	if member, err := s.GuildMember(v.GuildID, v.UserID); err == nil {
		name = member.DisplayName() + "'s Room"
	}

	ch, err := s.GuildChannelCreateComplex(v.GuildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: hub.ParentID,
	})
	if err != nil {
		sys.LogVoice("failed to create temp channel: %v", err)
		return
	}

	if err := sys.InsertTempVoiceChannel(ctx, ch.ID, v.GuildID, v.UserID); err != nil {
		sys.LogVoice("failed to record temp channel: %v", err)
	}
	if err := s.GuildMemberMove(v.GuildID, v.UserID, &ch.ID); err != nil {
		sys.LogVoice("failed to move member into temp channel: %v", err)
	}
	sys.LogVoice("created temp channel %s for user %s", ch.ID, v.UserID)
}

// reapIfEmpty deletes a temp channel once nobody is connected to it.
func reapIfEmpty(ctx context.Context, s *discordgo.Session, guildID, channelID string) {
	isTemp, err := sys.IsTempVoiceChannel(ctx, channelID)
	if err != nil || !isTemp {
		return
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		return
	}
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			return
		}
	}

	if _, err := s.ChannelDelete(channelID); err != nil {
		sys.LogVoice("failed to delete temp channel %s: %v", channelID, err)
	}
	if err := sys.DeleteTempVoiceChannel(ctx, channelID); err != nil {
		sys.LogVoice("failed to forget temp channel %s: %v", channelID, err)
	}
	sys.LogVoice("reaped empty temp channel %s", channelID)
}
