package game

import (
	"math/rand"
	"strings"
)

var wordList = []string{
	"anchor", "blanket", "cascade", "dolphin", "ember", "falcon",
	"glacier", "harvest", "island", "jungle", "kettle", "lantern",
	"meadow", "nectar", "orchard", "pebble", "quiver", "raven",
	"saddle", "thunder", "umbrella", "voyage", "whisker", "zephyr",
	"bramble", "crystal", "drizzle", "fathom", "gossamer", "horizon",
}

// PickWord returns a random word from the built-in list.
func PickWord(rng *rand.Rand) string {
	return wordList[rng.Intn(len(wordList))]
}

// Scramble shuffles the letters of word, retrying until the result differs
// from the input.
func Scramble(rng *rand.Rand, word string) string {
	runes := []rune(word)
	for {
		rng.Shuffle(len(runes), func(i, j int) { runes[i], runes[j] = runes[j], runes[i] })
		if string(runes) != word {
			return string(runes)
		}
	}
}

// CheckGuess compares case-insensitively with surrounding space trimmed.
func CheckGuess(word, guess string) bool {
	return strings.EqualFold(word, strings.TrimSpace(guess))
}

// UnscrambleReward scales with word length.
func UnscrambleReward(word string) int64 {
	return int64(len(word)) * 10
}
