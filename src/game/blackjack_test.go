package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandValue(t *testing.T) {
	cases := []struct {
		name string
		hand []Card
		want int
	}{
		{"simple", []Card{{Spades, 5}, {Hearts, 9}}, 14},
		{"face cards count ten", []Card{{Spades, 13}, {Hearts, 12}}, 20},
		{"soft ace", []Card{{Spades, 1}, {Hearts, 6}}, 17},
		{"hard ace", []Card{{Spades, 1}, {Hearts, 6}, {Clubs, 10}}, 17},
		{"two aces", []Card{{Spades, 1}, {Hearts, 1}}, 12},
		{"natural", []Card{{Spades, 1}, {Hearts, 13}}, 21},
		{"bust", []Card{{Spades, 10}, {Hearts, 10}, {Clubs, 5}}, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HandValue(tc.hand))
		})
	}
}

func TestIsBlackjack(t *testing.T) {
	assert.True(t, IsBlackjack([]Card{{Spades, 1}, {Hearts, 11}}))
	assert.False(t, IsBlackjack([]Card{{Spades, 7}, {Hearts, 7}, {Clubs, 7}}))
	assert.False(t, IsBlackjack([]Card{{Spades, 10}, {Hearts, 9}}))
}

func TestNewDeckHas52UniqueCards(t *testing.T) {
	deck := NewDeck(rand.New(rand.NewSource(1)))
	require.Len(t, deck, 52)
	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestPlayDealerStandsOn17(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		g := NewBlackjackGame(rand.New(rand.NewSource(seed)), 100)
		g.PlayDealer()
		dv := HandValue(g.Dealer)
		assert.GreaterOrEqual(t, dv, 17)
		assert.True(t, g.Done)
	}
}

func TestResolve(t *testing.T) {
	g := &BlackjackGame{
		Player: []Card{{Spades, 1}, {Hearts, 13}},
		Dealer: []Card{{Clubs, 10}, {Diamonds, 9}},
	}
	assert.Equal(t, BlackjackNatural, g.Resolve())

	g = &BlackjackGame{
		Player: []Card{{Spades, 10}, {Hearts, 9}},
		Dealer: []Card{{Clubs, 10}, {Diamonds, 9}},
	}
	assert.Equal(t, BlackjackPush, g.Resolve())

	g = &BlackjackGame{
		Player: []Card{{Spades, 10}, {Hearts, 5}, {Clubs, 9}},
		Dealer: []Card{{Clubs, 10}, {Diamonds, 7}},
	}
	assert.Equal(t, BlackjackLoss, g.Resolve())

	g = &BlackjackGame{
		Player: []Card{{Spades, 10}, {Hearts, 9}},
		Dealer: []Card{{Clubs, 10}, {Diamonds, 6}, {Hearts, 8}},
	}
	assert.Equal(t, BlackjackWin, g.Resolve())
}

func TestPayout(t *testing.T) {
	assert.EqualValues(t, 150, BlackjackNatural.Payout(100))
	assert.EqualValues(t, 100, BlackjackWin.Payout(100))
	assert.EqualValues(t, 0, BlackjackPush.Payout(100))
	assert.EqualValues(t, -100, BlackjackLoss.Payout(100))
}
