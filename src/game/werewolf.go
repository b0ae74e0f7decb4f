package game

import (
	"errors"
	"math/rand"
)

type WerewolfPhase int

const (
	PhaseLobby WerewolfPhase = iota
	PhaseNight
	PhaseDay
	PhaseOver
)

type WerewolfRole int

const (
	RoleVillager WerewolfRole = iota
	RoleWerewolf
	RoleSeer
	RoleDoctor
)

func (r WerewolfRole) String() string {
	switch r {
	case RoleWerewolf:
		return "Werewolf"
	case RoleSeer:
		return "Seer"
	case RoleDoctor:
		return "Doctor"
	default:
		return "Villager"
	}
}

const (
	WerewolfMinPlayers = 5
	WerewolfMaxPlayers = 12
)

var (
	ErrGameFull      = errors.New("game is full")
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotEnough     = errors.New("not enough players")
	ErrWrongPhase    = errors.New("action not valid in this phase")
	ErrNotInGame     = errors.New("player not in game")
	ErrDeadPlayer    = errors.New("player is dead")
)

type WerewolfPlayer struct {
	UserID string
	Role   WerewolfRole
	Alive  bool
}

// WerewolfGame holds one running game. Callers serialize access; the struct
// itself is not goroutine safe.
type WerewolfGame struct {
	ChannelID string
	Phase     WerewolfPhase
	Round     int
	Players   map[string]*WerewolfPlayer
	order     []string

	// Night picks, reset each round.
	wolfTarget  string
	doctorSave  string
	seerChecked string
	nightActed  map[string]bool
	votes       map[string]string
	WolvesWon   bool
}

func NewWerewolfGame(channelID string) *WerewolfGame {
	return &WerewolfGame{
		ChannelID:  channelID,
		Phase:      PhaseLobby,
		Players:    make(map[string]*WerewolfPlayer),
		nightActed: make(map[string]bool),
		votes:      make(map[string]string),
	}
}

func (g *WerewolfGame) Join(userID string) error {
	if g.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if _, ok := g.Players[userID]; ok {
		return ErrAlreadyJoined
	}
	if len(g.Players) >= WerewolfMaxPlayers {
		return ErrGameFull
	}
	g.Players[userID] = &WerewolfPlayer{UserID: userID, Alive: true}
	g.order = append(g.order, userID)
	return nil
}

// Start assigns roles and moves to the first night. Two wolves from eight
// players up, one below that, plus a seer and a doctor.
func (g *WerewolfGame) Start(rng *rand.Rand) error {
	if g.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if len(g.Players) < WerewolfMinPlayers {
		return ErrNotEnough
	}

	shuffled := make([]string, len(g.order))
	copy(shuffled, g.order)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	wolves := 1
	if len(shuffled) >= 8 {
		wolves = 2
	}
	idx := 0
	for ; idx < wolves; idx++ {
		g.Players[shuffled[idx]].Role = RoleWerewolf
	}
	g.Players[shuffled[idx]].Role = RoleSeer
	idx++
	g.Players[shuffled[idx]].Role = RoleDoctor

	g.Phase = PhaseNight
	g.Round = 1
	return nil
}

func (g *WerewolfGame) player(userID string) (*WerewolfPlayer, error) {
	p, ok := g.Players[userID]
	if !ok {
		return nil, ErrNotInGame
	}
	if !p.Alive {
		return nil, ErrDeadPlayer
	}
	return p, nil
}

// NightAction records a role's night pick. The wolf picks a kill target, the
// doctor a save, the seer a player to inspect (their role is returned).
func (g *WerewolfGame) NightAction(userID, targetID string) (WerewolfRole, error) {
	if g.Phase != PhaseNight {
		return RoleVillager, ErrWrongPhase
	}
	p, err := g.player(userID)
	if err != nil {
		return RoleVillager, err
	}
	target, ok := g.Players[targetID]
	if !ok || !target.Alive {
		return RoleVillager, ErrNotInGame
	}

	switch p.Role {
	case RoleWerewolf:
		g.wolfTarget = targetID
	case RoleDoctor:
		g.doctorSave = targetID
	case RoleSeer:
		g.seerChecked = targetID
		g.nightActed[userID] = true
		return target.Role, nil
	default:
		return RoleVillager, ErrWrongPhase
	}
	g.nightActed[userID] = true
	return RoleVillager, nil
}

// NightComplete reports whether every living special role has acted.
func (g *WerewolfGame) NightComplete() bool {
	for _, p := range g.Players {
		if p.Alive && p.Role != RoleVillager && !g.nightActed[p.UserID] {
			return false
		}
	}
	return true
}

// ResolveNight applies the wolf kill unless the doctor saved the target,
// then moves to day (or ends the game). It returns the killed player ID, or
// empty if the night was bloodless.
func (g *WerewolfGame) ResolveNight() (string, error) {
	if g.Phase != PhaseNight {
		return "", ErrWrongPhase
	}
	killed := ""
	if g.wolfTarget != "" && g.wolfTarget != g.doctorSave {
		g.Players[g.wolfTarget].Alive = false
		killed = g.wolfTarget
	}
	g.wolfTarget, g.doctorSave, g.seerChecked = "", "", ""
	g.nightActed = make(map[string]bool)

	if g.checkWin() {
		return killed, nil
	}
	g.Phase = PhaseDay
	g.votes = make(map[string]string)
	return killed, nil
}

// Vote records a day lynch vote. Self votes are allowed.
func (g *WerewolfGame) Vote(voterID, targetID string) error {
	if g.Phase != PhaseDay {
		return ErrWrongPhase
	}
	if _, err := g.player(voterID); err != nil {
		return err
	}
	target, ok := g.Players[targetID]
	if !ok || !target.Alive {
		return ErrNotInGame
	}
	g.votes[voterID] = targetID
	return nil
}

func (g *WerewolfGame) VotesCast() int { return len(g.votes) }

func (g *WerewolfGame) AliveCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (g *WerewolfGame) AlivePlayers() []*WerewolfPlayer {
	var out []*WerewolfPlayer
	for _, id := range g.order {
		if p := g.Players[id]; p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// ResolveDay lynches the plurality target and moves to the next night (or
// ends the game). Ties lynch nobody. It returns the lynched player ID.
func (g *WerewolfGame) ResolveDay() (string, error) {
	if g.Phase != PhaseDay {
		return "", ErrWrongPhase
	}
	tally := make(map[string]int)
	for _, target := range g.votes {
		tally[target]++
	}
	lynched, top, tied := "", 0, false
	for target, n := range tally {
		switch {
		case n > top:
			lynched, top, tied = target, n, false
		case n == top:
			tied = true
		}
	}
	if tied || top == 0 {
		lynched = ""
	}
	if lynched != "" {
		g.Players[lynched].Alive = false
	}
	g.votes = make(map[string]string)

	if g.checkWin() {
		return lynched, nil
	}
	g.Phase = PhaseNight
	g.Round++
	return lynched, nil
}

// checkWin ends the game when a faction has won: village wins when no wolf
// lives, wolves win at parity with the village.
func (g *WerewolfGame) checkWin() bool {
	wolves, villagers := 0, 0
	for _, p := range g.Players {
		if !p.Alive {
			continue
		}
		if p.Role == RoleWerewolf {
			wolves++
		} else {
			villagers++
		}
	}
	switch {
	case wolves == 0:
		g.Phase = PhaseOver
		g.WolvesWon = false
		return true
	case wolves >= villagers:
		g.Phase = PhaseOver
		g.WolvesWon = true
		return true
	}
	return false
}
