package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrambleKeepsLettersChangesOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		word := PickWord(rng)
		scrambled := Scramble(rng, word)
		assert.NotEqual(t, word, scrambled)
		assert.ElementsMatch(t, []rune(word), []rune(scrambled))
	}
}

func TestCheckGuess(t *testing.T) {
	assert.True(t, CheckGuess("lantern", "lantern"))
	assert.True(t, CheckGuess("lantern", "  LANTERN "))
	assert.False(t, CheckGuess("lantern", "lanterns"))
}

func TestUnscrambleReward(t *testing.T) {
	assert.EqualValues(t, 70, UnscrambleReward("lantern"))
}
