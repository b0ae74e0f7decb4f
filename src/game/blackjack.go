package game

import (
	"fmt"
	"math/rand"
	"strings"
)

type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitEmoji = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
}

type Card struct {
	Suit Suit
	Rank int // 1 = ace, 11 = jack, 12 = queen, 13 = king
}

func (c Card) String() string {
	names := map[int]string{1: "A", 11: "J", 12: "Q", 13: "K"}
	name, ok := names[c.Rank]
	if !ok {
		name = fmt.Sprintf("%d", c.Rank)
	}
	return name + suitEmoji[c.Suit]
}

// NewDeck returns a shuffled 52-card deck.
func NewDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, 52)
	for s := Spades; s <= Clubs; s++ {
		for r := 1; r <= 13; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// HandValue returns the best blackjack value of a hand, counting aces as 11
// where that does not bust.
func HandValue(hand []Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		switch {
		case c.Rank == 1:
			aces++
			total += 11
		case c.Rank >= 10:
			total += 10
		default:
			total += c.Rank
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsBlackjack reports a natural: exactly two cards totalling 21.
func IsBlackjack(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

func FormatHand(hand []Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

type BlackjackGame struct {
	Deck   []Card
	Player []Card
	Dealer []Card
	Stake  int64
	Done   bool
}

func NewBlackjackGame(rng *rand.Rand, stake int64) *BlackjackGame {
	g := &BlackjackGame{Deck: NewDeck(rng), Stake: stake}
	g.Player = append(g.Player, g.draw(), g.draw())
	g.Dealer = append(g.Dealer, g.draw(), g.draw())
	return g
}

func (g *BlackjackGame) draw() Card {
	c := g.Deck[0]
	g.Deck = g.Deck[1:]
	return c
}

// Hit deals the player one card and reports whether they busted.
func (g *BlackjackGame) Hit() bool {
	g.Player = append(g.Player, g.draw())
	if HandValue(g.Player) > 21 {
		g.Done = true
		return true
	}
	return false
}

// PlayDealer runs the house hand: hit to 17, stand on all 17s.
func (g *BlackjackGame) PlayDealer() {
	for HandValue(g.Dealer) < 17 {
		g.Dealer = append(g.Dealer, g.draw())
	}
	g.Done = true
}

type BlackjackResult int

const (
	BlackjackLoss BlackjackResult = iota
	BlackjackPush
	BlackjackWin
	BlackjackNatural
)

// Resolve compares the finished hands.
func (g *BlackjackGame) Resolve() BlackjackResult {
	pv, dv := HandValue(g.Player), HandValue(g.Dealer)
	switch {
	case pv > 21:
		return BlackjackLoss
	case IsBlackjack(g.Player) && !IsBlackjack(g.Dealer):
		return BlackjackNatural
	case IsBlackjack(g.Dealer) && !IsBlackjack(g.Player):
		return BlackjackLoss
	case dv > 21 || pv > dv:
		return BlackjackWin
	case pv == dv:
		return BlackjackPush
	default:
		return BlackjackLoss
	}
}

// Payout returns the net coin change for the stake: naturals pay 3:2.
func (r BlackjackResult) Payout(stake int64) int64 {
	switch r {
	case BlackjackNatural:
		return stake * 3 / 2
	case BlackjackWin:
		return stake
	case BlackjackPush:
		return 0
	default:
		return -stake
	}
}
