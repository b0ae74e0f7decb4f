package game

import "math/rand"

// Reel symbols, most common first. Each reel draws independently from the
// same weighted strip.
var slotStrip = []string{
	"🍒", "🍒", "🍒", "🍒", "🍒",
	"🍋", "🍋", "🍋", "🍋",
	"🍇", "🍇", "🍇",
	"🔔", "🔔",
	"💎",
}

// Triple payout multipliers against the stake.
var slotPaytable = map[string]int64{
	"🍒": 3,
	"🍋": 5,
	"🍇": 8,
	"🔔": 15,
	"💎": 50,
}

type SlotSpin struct {
	Reels      [3]string
	Multiplier int64
}

// Spin draws three reels. Three of a kind pays the table multiplier, a pair
// of cherries refunds the stake, anything else loses.
func Spin(rng *rand.Rand) SlotSpin {
	var s SlotSpin
	for i := range s.Reels {
		s.Reels[i] = slotStrip[rng.Intn(len(slotStrip))]
	}
	if s.Reels[0] == s.Reels[1] && s.Reels[1] == s.Reels[2] {
		s.Multiplier = slotPaytable[s.Reels[0]]
		return s
	}
	cherries := 0
	for _, r := range s.Reels {
		if r == "🍒" {
			cherries++
		}
	}
	if cherries >= 2 {
		s.Multiplier = 1
	}
	return s
}

// Payout converts a spin into the net coin change for the stake.
func (s SlotSpin) Payout(stake int64) int64 {
	if s.Multiplier == 0 {
		return -stake
	}
	return stake * (s.Multiplier - 1)
}
