package cmd

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashvale/ember/src/game"
)

// testBlackjackSession deals a fixed, bust-proof hand: player 11, dealer
// standing on 17, nothing but twos left in the deck.
func testBlackjackSession(userID string) *blackjackSession {
	g := &game.BlackjackGame{
		Deck:   []game.Card{{Rank: 2}, {Rank: 2}, {Rank: 2}, {Rank: 2}},
		Player: []game.Card{{Rank: 5}, {Rank: 6}},
		Dealer: []game.Card{{Rank: 10}, {Rank: 7}},
		Stake:  100,
	}
	return &blackjackSession{game: g, userID: userID, guildID: "g1", started: time.Now()}
}

func TestAdvanceBlackjackSettlesExactlyOnce(t *testing.T) {
	const id = "test-bj-concurrent"
	blackjackMu.Lock()
	blackjackGames[id] = testBlackjackSession("u1")
	blackjackMu.Unlock()

	// Button presses are dispatched in their own goroutines, so a mashed
	// Stand must win the race exactly once.
	var wg sync.WaitGroup
	var mu sync.Mutex
	settled := 0
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, finished, err := advanceBlackjack(id, "stand", "u1")
			if err == nil && finished {
				mu.Lock()
				settled++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, errBlackjackExpired)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
	blackjackMu.Lock()
	_, remains := blackjackGames[id]
	blackjackMu.Unlock()
	assert.False(t, remains)
}

func TestAdvanceBlackjackRejectsOtherUsers(t *testing.T) {
	const id = "test-bj-wrong-user"
	session := testBlackjackSession("u1")
	blackjackMu.Lock()
	blackjackGames[id] = session
	blackjackMu.Unlock()
	defer func() {
		blackjackMu.Lock()
		delete(blackjackGames, id)
		blackjackMu.Unlock()
	}()

	_, _, finished, err := advanceBlackjack(id, "hit", "intruder")
	require.ErrorIs(t, err, errNotYourHand)
	assert.False(t, finished)
	assert.Len(t, session.game.Player, 2)
}

func TestAdvanceBlackjackHitKeepsSessionUntilBust(t *testing.T) {
	const id = "test-bj-hit"
	session := testBlackjackSession("u1")
	blackjackMu.Lock()
	blackjackGames[id] = session
	blackjackMu.Unlock()
	defer func() {
		blackjackMu.Lock()
		delete(blackjackGames, id)
		blackjackMu.Unlock()
	}()

	_, embed, finished, err := advanceBlackjack(id, "hit", "u1")
	require.NoError(t, err)
	assert.False(t, finished)
	require.NotNil(t, embed)
	assert.Len(t, session.game.Player, 3)

	blackjackMu.Lock()
	_, remains := blackjackGames[id]
	blackjackMu.Unlock()
	assert.True(t, remains)
}

func TestExpireBlackjackSessionsOnlyReapsStaleOnes(t *testing.T) {
	stale := testBlackjackSession("u1")
	stale.started = time.Now().Add(-10 * time.Minute)
	fresh := testBlackjackSession("u2")

	blackjackMu.Lock()
	blackjackGames["test-bj-stale"] = stale
	blackjackGames["test-bj-fresh"] = fresh
	blackjackMu.Unlock()
	defer func() {
		blackjackMu.Lock()
		delete(blackjackGames, "test-bj-fresh")
		blackjackMu.Unlock()
	}()

	reaped := expireBlackjackSessions(time.Now().Add(-blackjackTimeout))
	require.Len(t, reaped, 1)
	assert.Same(t, stale, reaped[0])

	blackjackMu.Lock()
	_, staleRemains := blackjackGames["test-bj-stale"]
	_, freshRemains := blackjackGames["test-bj-fresh"]
	blackjackMu.Unlock()
	assert.False(t, staleRemains)
	assert.True(t, freshRemains)
}

func TestAdvanceBlackjackUnknownGame(t *testing.T) {
	_, _, _, err := advanceBlackjack("no-such-game", "stand", "u1")
	assert.True(t, errors.Is(err, errBlackjackExpired))
}
