package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/game"
	"github.com/ashvale/ember/src/sys"
)

const unscrambleDuration = 60 * time.Second

type unscrambleRound struct {
	answer  string
	expires time.Time
}

var (
	unscrambleMu     sync.Mutex
	unscrambleRounds = map[string]*unscrambleRound{} // keyed by channel ID
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "unscramble",
		Description: "Start a word unscramble round in this channel",
	}, handleUnscramble)

	sys.RegisterMessageHandler(checkUnscrambleGuess)
}

func handleUnscramble(s *discordgo.Session, i *discordgo.InteractionCreate) {
	rng := newRNG()
	word := game.PickWord(rng)
	round := &unscrambleRound{answer: word, expires: time.Now().Add(unscrambleDuration)}

	unscrambleMu.Lock()
	if _, running := unscrambleRounds[i.ChannelID]; running {
		unscrambleMu.Unlock()
		respondError(s, i, "A round is already running in this channel.")
		return
	}
	unscrambleRounds[i.ChannelID] = round
	unscrambleMu.Unlock()

	channelID := i.ChannelID
	time.AfterFunc(unscrambleDuration, func() {
		if removeUnscrambleRound(channelID, round) {
			s.ChannelMessageSend(channelID,
				fmt.Sprintf("⏰ Time's up! The word was **%s**.", round.answer))
		}
	})

	embed := sys.NewEmbed("Unscramble!")
	embed.Description = fmt.Sprintf(
		"First to type the word within %d seconds wins **%d** coins:\n# `%s`",
		int(unscrambleDuration.Seconds()), game.UnscrambleReward(word), game.Scramble(rng, word))
	sys.RespondEmbed(s, i, embed)
}

// removeUnscrambleRound forgets the round if it is still the one running in
// the channel. It reports whether this caller was the one to end it, so a
// winning guess and the expiry timer never both claim the same round.
func removeUnscrambleRound(channelID string, round *unscrambleRound) bool {
	unscrambleMu.Lock()
	defer unscrambleMu.Unlock()

	if current, ok := unscrambleRounds[channelID]; !ok || current != round {
		return false
	}
	delete(unscrambleRounds, channelID)
	return true
}

func checkUnscrambleGuess(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	unscrambleMu.Lock()
	round, running := unscrambleRounds[m.ChannelID]
	unscrambleMu.Unlock()
	if !running || time.Now().After(round.expires) || !game.CheckGuess(round.answer, m.Content) {
		return
	}
	if !removeUnscrambleRound(m.ChannelID, round) {
		return
	}

	reward := game.UnscrambleReward(round.answer)
	ctx, cancel := cmdContext()
	defer cancel()
	if _, err := sys.AdjustCoins(ctx, m.GuildID, m.Author.ID, reward); err != nil {
		sys.LogEconomy("unscramble reward failed: %v", err)
	}
	if err := sys.RecordGamePlay(ctx, m.GuildID, m.Author.ID, "unscramble", true, reward); err != nil {
		sys.LogEconomy("failed to record unscramble win: %v", err)
	}

	s.ChannelMessageSendReply(m.ChannelID,
		fmt.Sprintf("🏆 Correct! The word was **%s**. You win **%d** coins.", round.answer, reward),
		m.Reference())
}
