package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashvale/ember/src/game"
)

func TestOpenWerewolfLobbySeatsCreator(t *testing.T) {
	const channel = "test-ww-lobby"
	defer func() {
		werewolfMu.Lock()
		delete(werewolfGames, channel)
		werewolfMu.Unlock()
	}()

	require.True(t, openWerewolfLobby(channel, "creator"))

	g := werewolfGame(channel)
	require.NotNil(t, g)
	assert.Contains(t, g.Players, "creator")
	assert.Len(t, g.Players, 1)

	// Second lobby in the same channel is refused while one is running.
	assert.False(t, openWerewolfLobby(channel, "someone-else"))
}

func TestOpenWerewolfLobbyReplacesFinishedGame(t *testing.T) {
	const channel = "test-ww-finished"
	defer func() {
		werewolfMu.Lock()
		delete(werewolfGames, channel)
		werewolfMu.Unlock()
	}()

	require.True(t, openWerewolfLobby(channel, "p1"))
	werewolfMu.Lock()
	werewolfGames[channel].Phase = game.PhaseOver
	werewolfMu.Unlock()

	require.True(t, openWerewolfLobby(channel, "p2"))
	g := werewolfGame(channel)
	assert.Contains(t, g.Players, "p2")
	assert.NotContains(t, g.Players, "p1")
}
