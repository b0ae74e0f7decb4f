package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveUnscrambleRoundEndsRoundOnce(t *testing.T) {
	round := &unscrambleRound{answer: "ember", expires: time.Now().Add(time.Minute)}
	unscrambleMu.Lock()
	unscrambleRounds["test-chan-once"] = round
	unscrambleMu.Unlock()

	// Winner and expiry timer both try to end the round; only one may win.
	assert.True(t, removeUnscrambleRound("test-chan-once", round))
	assert.False(t, removeUnscrambleRound("test-chan-once", round))
}

func TestRemoveUnscrambleRoundIgnoresReplacedRound(t *testing.T) {
	old := &unscrambleRound{answer: "wolf", expires: time.Now().Add(-time.Second)}
	current := &unscrambleRound{answer: "coin", expires: time.Now().Add(time.Minute)}

	unscrambleMu.Lock()
	unscrambleRounds["test-chan-replaced"] = current
	unscrambleMu.Unlock()
	defer func() {
		unscrambleMu.Lock()
		delete(unscrambleRounds, "test-chan-replaced")
		unscrambleMu.Unlock()
	}()

	// A stale timer for the previous round must not kill the new one.
	require.False(t, removeUnscrambleRound("test-chan-replaced", old))

	unscrambleMu.Lock()
	got := unscrambleRounds["test-chan-replaced"]
	unscrambleMu.Unlock()
	assert.Same(t, current, got)
}
