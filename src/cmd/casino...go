package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/ashvale/ember/src/game"
	"github.com/ashvale/ember/src/sys"
)

const (
	blackjackTimeout     = 5 * time.Minute
	casinoReaperInterval = time.Minute
)

var (
	blackjackMu    sync.Mutex
	blackjackGames = map[string]*blackjackSession{}

	errBlackjackExpired = errors.New("blackjack session expired")
	errNotYourHand      = errors.New("not your hand")
)

type blackjackSession struct {
	game    *game.BlackjackGame
	userID  string
	guildID string
	started time.Time
}

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "casino",
		Description: "Games of chance",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "slots",
				Description: "Spin the slot machine",
				Options:     []*discordgo.ApplicationCommandOption{stakeOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "blackjack",
				Description: "Play a hand of blackjack",
				Options:     []*discordgo.ApplicationCommandOption{stakeOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "coinflip",
				Description: "Call a coin toss",
				Options: []*discordgo.ApplicationCommandOption{
					stakeOption(),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "call",
						Description: "Heads or tails",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Heads", Value: "heads"},
							{Name: "Tails", Value: "tails"},
						},
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
		case "slots":
			handleSlots(s, i, options[0].Options)
		case "blackjack":
			handleBlackjackStart(s, i, options[0].Options)
		case "coinflip":
			handleCoinflip(s, i, options[0].Options)
		}
	})

	sys.RegisterComponentHandler("bj:", handleBlackjackButton)
	sys.RegisterDaemon(sys.LogEconomy, StartBlackjackReaper)
}

func stakeOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "stake",
		Description: "Coins to wager",
		Required:    true,
	}
}

// takeStake debits the wager up front. Winnings are paid back on resolution.
func takeStake(s *discordgo.Session, i *discordgo.InteractionCreate, stake int64) bool {
	if stake <= 0 {
		respondError(s, i, sys.ErrEconomyBadAmount)
		return false
	}
	ctx, cancel := cmdContext()
	defer cancel()

	user := sys.InteractionUser(i)
	if _, err := sys.AdjustCoins(ctx, i.GuildID, user.ID, -stake); err != nil {
		if errors.Is(err, sys.ErrInsufficientFunds) {
			respondError(s, i, sys.ErrEconomyNotEnoughCoins)
		} else {
			sys.LogEconomy("stake debit failed: %v", err)
			respondError(s, i, sys.ErrEconomyGeneric)
		}
		return false
	}
	return true
}

// settleGame credits winnings (stake plus net if positive) and records the
// play. The stake was already debited, so a push pays the stake back.
func settleGame(guildID, userID, gameName string, stake, net int64) {
	ctx, cancel := cmdContext()
	defer cancel()

	payback := stake + net
	if payback > 0 {
		if _, err := sys.AdjustCoins(ctx, guildID, userID, payback); err != nil {
			sys.LogEconomy("payout failed for %s: %v", gameName, err)
		}
	}
	if err := sys.RecordGamePlay(ctx, guildID, userID, gameName, net > 0, net); err != nil {
		sys.LogEconomy("failed to record %s play: %v", gameName, err)
	}
}

func handleSlots(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	stake := optionMap(options)["stake"].IntValue()
	if !takeStake(s, i, stake) {
		return
	}

	spin := game.Spin(newRNG())
	net := spin.Payout(stake)
	user := sys.InteractionUser(i)
	settleGame(i.GuildID, user.ID, "slots", stake, net)

	embed := sys.NewEmbed("Slots")
	embed.Description = fmt.Sprintf("# %s %s %s\n", spin.Reels[0], spin.Reels[1], spin.Reels[2])
	switch {
	case net > 0:
		embed.Description += fmt.Sprintf("<@%s> won **%d** coins!", user.ID, net)
	case net == 0:
		embed.Description += fmt.Sprintf("<@%s> broke even.", user.ID)
	default:
		embed.Description += fmt.Sprintf("<@%s> lost **%d** coins.", user.ID, -net)
	}
	sys.RespondEmbed(s, i, embed)
}

func handleCoinflip(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)
	stake := opts["stake"].IntValue()
	call := opts["call"].StringValue()
	if !takeStake(s, i, stake) {
		return
	}

	result := "heads"
	if rand.Intn(2) == 1 {
		result = "tails"
	}
	net := -stake
	if call == result {
		net = stake
	}

	user := sys.InteractionUser(i)
	settleGame(i.GuildID, user.ID, "coinflip", stake, net)

	verdict := fmt.Sprintf("<@%s> lost **%d** coins.", user.ID, stake)
	if net > 0 {
		verdict = fmt.Sprintf("<@%s> won **%d** coins!", user.ID, stake)
	}
	sys.Respond(s, i, fmt.Sprintf("🪙 The coin landed **%s**. %s", result, verdict))
}

func handleBlackjackStart(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	stake := optionMap(options)["stake"].IntValue()
	if !takeStake(s, i, stake) {
		return
	}

	user := sys.InteractionUser(i)
	g := game.NewBlackjackGame(newRNG(), stake)
	session := &blackjackSession{game: g, userID: user.ID, guildID: i.GuildID, started: time.Now()}

	// Naturals resolve immediately, before the session is ever published.
	if game.IsBlackjack(g.Player) || game.IsBlackjack(g.Dealer) {
		g.PlayDealer()
		g.Done = true
		settleBlackjack(s, i, session, false)
		return
	}

	id := uuid.NewString()
	blackjackMu.Lock()
	blackjackGames[id] = session
	blackjackMu.Unlock()

	embed := blackjackEmbed(g, user.ID, true)
	if err := sys.RespondComponents(s, i, "", embed, blackjackButtons(id)); err != nil {
		sys.LogError("failed to start blackjack: %v", err)
	}
}

func blackjackButtons(id string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: "bj:hit:" + id},
				discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: "bj:stand:" + id},
			},
		},
	}
}

func blackjackEmbed(g *game.BlackjackGame, userID string, hideHole bool) *discordgo.MessageEmbed {
	embed := sys.NewEmbed("Blackjack")
	dealer := game.FormatHand(g.Dealer)
	dealerValue := fmt.Sprintf("%d", game.HandValue(g.Dealer))
	if hideHole {
		dealer = g.Dealer[0].String() + " 🂠"
		dealerValue = "?"
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: fmt.Sprintf("Your hand (%d)", game.HandValue(g.Player)), Value: game.FormatHand(g.Player)},
		{Name: fmt.Sprintf("Dealer (%s)", dealerValue), Value: dealer},
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Stake: %d | <@%s>", g.Stake, userID)}
	return embed
}

func handleBlackjackButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.Split(i.MessageComponentData().CustomID, ":")
	if len(parts) != 3 {
		return
	}
	action, id := parts[1], parts[2]
	user := sys.InteractionUser(i)

	session, embed, finished, err := advanceBlackjack(id, action, user.ID)
	switch {
	case errors.Is(err, errBlackjackExpired):
		respondError(s, i, "That game has expired.")
		return
	case errors.Is(err, errNotYourHand):
		respondError(s, i, "This isn't your hand.")
		return
	case err != nil:
		return
	}

	if finished {
		settleBlackjack(s, i, session, true)
		return
	}
	sys.UpdateMessage(s, i, "", embed, blackjackButtons(id))
}

// advanceBlackjack applies a button action while holding the session lock,
// since each button press is dispatched in its own goroutine. A finished
// session leaves the table before the lock is released, so it settles
// exactly once no matter how fast the buttons are mashed.
func advanceBlackjack(id, action, userID string) (*blackjackSession, *discordgo.MessageEmbed, bool, error) {
	blackjackMu.Lock()
	defer blackjackMu.Unlock()

	session, ok := blackjackGames[id]
	if !ok {
		return nil, nil, false, errBlackjackExpired
	}
	if userID != session.userID {
		return nil, nil, false, errNotYourHand
	}

	finished := false
	switch action {
	case "hit":
		if session.game.Hit() {
			session.game.Done = true
			finished = true
		}
	case "stand":
		session.game.PlayDealer()
		session.game.Done = true
		finished = true
	default:
		return nil, nil, false, fmt.Errorf("unknown blackjack action %q", action)
	}

	if finished {
		delete(blackjackGames, id)
		return session, nil, true, nil
	}
	return session, blackjackEmbed(session.game, session.userID, true), false, nil
}

// settleBlackjack pays out a hand already removed from the table.
// update selects component-update vs fresh response.
func settleBlackjack(s *discordgo.Session, i *discordgo.InteractionCreate, session *blackjackSession, update bool) {
	g := session.game
	result := g.Resolve()
	net := result.Payout(g.Stake)
	settleGame(session.guildID, session.userID, "blackjack", g.Stake, net)

	embed := blackjackEmbed(g, session.userID, false)
	switch result {
	case game.BlackjackNatural:
		embed.Description = fmt.Sprintf("**Blackjack!** <@%s> won **%d** coins.", session.userID, net)
	case game.BlackjackWin:
		embed.Description = fmt.Sprintf("<@%s> won **%d** coins.", session.userID, net)
	case game.BlackjackPush:
		embed.Description = "Push. Stake returned."
	default:
		embed.Description = fmt.Sprintf("<@%s> lost **%d** coins.", session.userID, g.Stake)
	}

	if update {
		sys.UpdateMessage(s, i, "", embed, []discordgo.MessageComponent{})
	} else {
		sys.RespondEmbed(s, i, embed)
	}
}

// StartBlackjackReaper refunds hands abandoned mid-game. The stake is
// debited up front, so a session nobody finishes would otherwise eat it.
func StartBlackjackReaper(s *discordgo.Session) {
	go func() {
		ticker := time.NewTicker(casinoReaperInterval)
		defer ticker.Stop()
		for range ticker.C {
			for _, session := range expireBlackjackSessions(time.Now().Add(-blackjackTimeout)) {
				refundBlackjackStake(session)
			}
		}
	}()
}

// expireBlackjackSessions removes and returns every session started before
// cutoff.
func expireBlackjackSessions(cutoff time.Time) []*blackjackSession {
	blackjackMu.Lock()
	defer blackjackMu.Unlock()

	var stale []*blackjackSession
	for id, session := range blackjackGames {
		if session.started.Before(cutoff) {
			delete(blackjackGames, id)
			stale = append(stale, session)
		}
	}
	return stale
}

func refundBlackjackStake(session *blackjackSession) {
	ctx, cancel := cmdContext()
	defer cancel()

	if _, err := sys.AdjustCoins(ctx, session.guildID, session.userID, session.game.Stake); err != nil {
		sys.LogEconomy("failed to refund abandoned blackjack stake: %v", err)
		return
	}
	sys.LogEconomy("refunded %d coins for an abandoned blackjack hand", session.game.Stake)
}
