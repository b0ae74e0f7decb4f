package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinPayouts(t *testing.T) {
	triple := SlotSpin{Reels: [3]string{"💎", "💎", "💎"}, Multiplier: slotPaytable["💎"]}
	assert.EqualValues(t, 100*(50-1), triple.Payout(100))

	refund := SlotSpin{Reels: [3]string{"🍒", "🍒", "🍋"}, Multiplier: 1}
	assert.EqualValues(t, 0, refund.Payout(100))

	loss := SlotSpin{Reels: [3]string{"🍒", "🍋", "🍇"}}
	assert.EqualValues(t, -100, loss.Payout(100))
}

func TestSpinSetsMultiplierForTriples(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		s := Spin(rng)
		if s.Reels[0] == s.Reels[1] && s.Reels[1] == s.Reels[2] {
			assert.Equal(t, slotPaytable[s.Reels[0]], s.Multiplier)
		}
	}
}

func TestSpinHouseEdge(t *testing.T) {
	// The weighted strip is tuned so the house keeps an edge over many spins.
	rng := rand.New(rand.NewSource(42))
	var net int64
	for i := 0; i < 200000; i++ {
		net += Spin(rng).Payout(10)
	}
	assert.Negative(t, net, "expected the house to come out ahead")
}
