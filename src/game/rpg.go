package game

import (
	"math/rand"
)

type Monster struct {
	Name   string
	HP     int
	Attack int
	Gold   int64
	XP     int
}

// Encounter tiers keyed off the character level at spawn time.
var monsterTable = []Monster{
	{Name: "Giant Rat", HP: 15, Attack: 3, Gold: 10, XP: 15},
	{Name: "Goblin", HP: 25, Attack: 5, Gold: 25, XP: 30},
	{Name: "Skeleton", HP: 35, Attack: 7, Gold: 40, XP: 50},
	{Name: "Orc Raider", HP: 50, Attack: 10, Gold: 70, XP: 80},
	{Name: "Cave Troll", HP: 80, Attack: 14, Gold: 120, XP: 130},
	{Name: "Young Dragon", HP: 120, Attack: 20, Gold: 250, XP: 220},
}

// SpawnMonster picks a monster near the character's level, with one tier of
// jitter either way.
func SpawnMonster(rng *rand.Rand, charLevel int) Monster {
	tier := charLevel - 1
	tier += rng.Intn(3) - 1
	if tier < 0 {
		tier = 0
	}
	if tier >= len(monsterTable) {
		tier = len(monsterTable) - 1
	}
	return monsterTable[tier]
}

type FightRound struct {
	PlayerDamage  int
	MonsterDamage int
	Crit          bool
}

// FightTurn resolves one exchange: the player strikes first, the monster
// only swings back if it survives. Damage rolls vary ±25% and the player
// crits for double on a 1-in-10.
func FightTurn(rng *rand.Rand, playerAttack, monsterAttack int) FightRound {
	r := FightRound{
		PlayerDamage:  rollDamage(rng, playerAttack),
		MonsterDamage: rollDamage(rng, monsterAttack),
	}
	if rng.Intn(10) == 0 {
		r.PlayerDamage *= 2
		r.Crit = true
	}
	return r
}

func rollDamage(rng *rand.Rand, attack int) int {
	spread := attack / 4
	if spread < 1 {
		spread = 1
	}
	dmg := attack + rng.Intn(2*spread+1) - spread
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// RPGLevelUp applies level gains when xp crosses the threshold. The curve is
// 100 XP per current level. It returns the number of levels gained.
func RPGLevelUp(level, xp int) (newLevel, remainingXP, hpGain, attackGain int) {
	newLevel, remainingXP = level, xp
	for remainingXP >= newLevel*100 {
		remainingXP -= newLevel * 100
		newLevel++
		hpGain += 10
		attackGain += 2
	}
	return newLevel, remainingXP, hpGain, attackGain
}
