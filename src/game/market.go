package game

import "math/rand"

// NextPrice advances a ticker one step of a mean-reverting random walk.
// drift pulls the price back toward anchor, volatility scales the noise.
// Prices never fall below a penny.
func NextPrice(rng *rand.Rand, price, anchor, volatility, drift float64) float64 {
	noise := rng.NormFloat64() * volatility * price
	pull := drift * (anchor - price)
	next := price + pull + noise
	if next < 0.01 {
		next = 0.01
	}
	return next
}
