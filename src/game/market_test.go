package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPriceNeverNonPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	price := 0.05
	for i := 0; i < 10000; i++ {
		price = NextPrice(rng, price, 100, 0.5, 0.01)
		assert.GreaterOrEqual(t, price, 0.01)
	}
}

func TestNextPriceRevertsTowardAnchor(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	price := 500.0
	for i := 0; i < 5000; i++ {
		price = NextPrice(rng, price, 100, 0.005, 0.05)
	}
	assert.InDelta(t, 100, price, 50, "price should have drifted back toward the anchor")
}
