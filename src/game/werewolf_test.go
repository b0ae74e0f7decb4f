package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLobby(t *testing.T, players int) *WerewolfGame {
	t.Helper()
	g := NewWerewolfGame("chan1")
	for i := 0; i < players; i++ {
		require.NoError(t, g.Join(fmt.Sprintf("user%d", i)))
	}
	return g
}

func findByRole(g *WerewolfGame, role WerewolfRole) *WerewolfPlayer {
	for _, id := range g.Players {
		if id.Role == role && id.Alive {
			return id
		}
	}
	return nil
}

func TestJoinRules(t *testing.T) {
	g := newLobby(t, 3)
	assert.ErrorIs(t, g.Join("user0"), ErrAlreadyJoined)

	g = newLobby(t, WerewolfMaxPlayers)
	assert.ErrorIs(t, g.Join("overflow"), ErrGameFull)

	require.NoError(t, newLobby(t, WerewolfMinPlayers).Start(rand.New(rand.NewSource(1))))
}

func TestStartAssignsRoles(t *testing.T) {
	g := newLobby(t, 5)
	require.NoError(t, g.Start(rand.New(rand.NewSource(1))))
	assert.Equal(t, PhaseNight, g.Phase)

	counts := make(map[WerewolfRole]int)
	for _, p := range g.Players {
		counts[p.Role]++
	}
	assert.Equal(t, 1, counts[RoleWerewolf])
	assert.Equal(t, 1, counts[RoleSeer])
	assert.Equal(t, 1, counts[RoleDoctor])
	assert.Equal(t, 2, counts[RoleVillager])
}

func TestStartAssignsTwoWolvesAtEight(t *testing.T) {
	g := newLobby(t, 8)
	require.NoError(t, g.Start(rand.New(rand.NewSource(1))))
	counts := make(map[WerewolfRole]int)
	for _, p := range g.Players {
		counts[p.Role]++
	}
	assert.Equal(t, 2, counts[RoleWerewolf])
}

func TestStartNeedsEnoughPlayers(t *testing.T) {
	g := newLobby(t, WerewolfMinPlayers-1)
	assert.ErrorIs(t, g.Start(rand.New(rand.NewSource(1))), ErrNotEnough)
	assert.Equal(t, PhaseLobby, g.Phase)
}

func TestNightKillAndDoctorSave(t *testing.T) {
	g := newLobby(t, 5)
	require.NoError(t, g.Start(rand.New(rand.NewSource(1))))

	wolf := findByRole(g, RoleWerewolf)
	doctor := findByRole(g, RoleDoctor)
	seer := findByRole(g, RoleSeer)
	victim := findByRole(g, RoleVillager)

	// Doctor saves the victim; nobody dies.
	_, err := g.NightAction(wolf.UserID, victim.UserID)
	require.NoError(t, err)
	_, err = g.NightAction(doctor.UserID, victim.UserID)
	require.NoError(t, err)
	seen, err := g.NightAction(seer.UserID, wolf.UserID)
	require.NoError(t, err)
	assert.Equal(t, RoleWerewolf, seen)
	assert.True(t, g.NightComplete())

	killed, err := g.ResolveNight()
	require.NoError(t, err)
	assert.Empty(t, killed)
	assert.Equal(t, PhaseDay, g.Phase)
	assert.True(t, victim.Alive)
}

func TestNightKillLandsWithoutSave(t *testing.T) {
	g := newLobby(t, 5)
	require.NoError(t, g.Start(rand.New(rand.NewSource(1))))

	wolf := findByRole(g, RoleWerewolf)
	doctor := findByRole(g, RoleDoctor)
	victim := findByRole(g, RoleVillager)

	_, err := g.NightAction(wolf.UserID, victim.UserID)
	require.NoError(t, err)
	_, err = g.NightAction(doctor.UserID, doctor.UserID)
	require.NoError(t, err)

	killed, err := g.ResolveNight()
	require.NoError(t, err)
	assert.Equal(t, victim.UserID, killed)
	assert.False(t, victim.Alive)
}

func TestDayVoteLynchesPlurality(t *testing.T) {
	g := newLobby(t, 6)
	require.NoError(t, g.Start(rand.New(rand.NewSource(2))))

	wolf := findByRole(g, RoleWerewolf)
	_, err := g.ResolveNight()
	require.NoError(t, err)
	require.Equal(t, PhaseDay, g.Phase)

	for _, p := range g.AlivePlayers() {
		require.NoError(t, g.Vote(p.UserID, wolf.UserID))
	}

	lynched, err := g.ResolveDay()
	require.NoError(t, err)
	assert.Equal(t, wolf.UserID, lynched)
	assert.Equal(t, PhaseOver, g.Phase)
	assert.False(t, g.WolvesWon)
}

func TestDayVoteTieLynchesNobody(t *testing.T) {
	g := newLobby(t, 5)
	require.NoError(t, g.Start(rand.New(rand.NewSource(3))))
	_, err := g.ResolveNight()
	require.NoError(t, err)

	alive := g.AlivePlayers()
	require.NoError(t, g.Vote(alive[0].UserID, alive[1].UserID))
	require.NoError(t, g.Vote(alive[1].UserID, alive[0].UserID))

	lynched, err := g.ResolveDay()
	require.NoError(t, err)
	assert.Empty(t, lynched)
	assert.Equal(t, PhaseNight, g.Phase)
	assert.Equal(t, 2, g.Round)
}

func TestWolvesWinAtParity(t *testing.T) {
	g := newLobby(t, 5)
	require.NoError(t, g.Start(rand.New(rand.NewSource(4))))

	wolf := findByRole(g, RoleWerewolf)
	for _, p := range g.Players {
		if p.Role != RoleWerewolf && p.UserID != wolf.UserID {
			p.Alive = false
		}
	}
	// Revive one villager so parity is exactly 1v1 after the next kill.
	villager := findNonWolf(g)
	villager.Alive = true
	secondVillager := findNonWolfExcept(g, villager.UserID)
	secondVillager.Alive = true

	_, err := g.NightAction(wolf.UserID, villager.UserID)
	require.NoError(t, err)
	_, err = g.ResolveNight()
	require.NoError(t, err)

	assert.Equal(t, PhaseOver, g.Phase)
	assert.True(t, g.WolvesWon)
}

func findNonWolf(g *WerewolfGame) *WerewolfPlayer {
	for _, p := range g.Players {
		if p.Role != RoleWerewolf {
			return p
		}
	}
	return nil
}

func findNonWolfExcept(g *WerewolfGame, except string) *WerewolfPlayer {
	for _, p := range g.Players {
		if p.Role != RoleWerewolf && p.UserID != except {
			return p
		}
	}
	return nil
}

func TestDeadPlayersCannotAct(t *testing.T) {
	g := newLobby(t, 5)
	require.NoError(t, g.Start(rand.New(rand.NewSource(5))))

	wolf := findByRole(g, RoleWerewolf)
	victim := findByRole(g, RoleVillager)
	_, err := g.NightAction(wolf.UserID, victim.UserID)
	require.NoError(t, err)
	_, err = g.ResolveNight()
	require.NoError(t, err)
	require.False(t, victim.Alive)

	assert.ErrorIs(t, g.Vote(victim.UserID, wolf.UserID), ErrDeadPlayer)
}
