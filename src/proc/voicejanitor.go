package proc

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/sys"
)

const voiceJanitorInterval = 10 * time.Minute

func init() {
	sys.RegisterDaemon(sys.LogVoice, StartVoiceJanitor)
}

// StartVoiceJanitor sweeps temp voice channels that were orphaned while the
// bot was offline (the live voice handler catches the normal case).
func StartVoiceJanitor(s *discordgo.Session) {
	go func() {
		sweepTempChannels(s)
		ticker := time.NewTicker(voiceJanitorInterval)
		defer ticker.Stop()
		for range ticker.C {
			sweepTempChannels(s)
		}
	}()
}

func sweepTempChannels(s *discordgo.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	channels, err := sys.GetAllTempVoiceChannels(ctx)
	if err != nil {
		sys.LogVoice("janitor failed to list temp channels: %v", err)
		return
	}

	for _, tc := range channels {
		if occupied(s, tc.GuildID, tc.ChannelID) {
			continue
		}
		if _, err := s.ChannelDelete(tc.ChannelID); err != nil {
			// Channel may already be gone; forget it either way.
			sys.LogVoice("janitor could not delete %s: %v", tc.ChannelID, err)
		}
		if err := sys.DeleteTempVoiceChannel(ctx, tc.ChannelID); err != nil {
			sys.LogVoice("janitor could not forget %s: %v", tc.ChannelID, err)
			continue
		}
		sys.LogVoice("janitor reaped temp channel %s", tc.ChannelID)
	}
}

func occupied(s *discordgo.Session, guildID, channelID string) bool {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return false
	}
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			return true
		}
	}
	return false
}
