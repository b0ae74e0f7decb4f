package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpawnMonsterStaysInTable(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for level := 1; level <= 20; level++ {
		for i := 0; i < 50; i++ {
			m := SpawnMonster(rng, level)
			assert.NotEmpty(t, m.Name)
			assert.Positive(t, m.HP)
		}
	}
}

func TestFightTurnDamageIsPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	for i := 0; i < 1000; i++ {
		r := FightTurn(rng, 10, 5)
		assert.Positive(t, r.PlayerDamage)
		assert.Positive(t, r.MonsterDamage)
	}
}

func TestRPGLevelUp(t *testing.T) {
	level, xp, hp, atk := RPGLevelUp(1, 50)
	assert.Equal(t, 1, level)
	assert.Equal(t, 50, xp)
	assert.Zero(t, hp)
	assert.Zero(t, atk)

	// 100 XP clears level 1, leaving 30 toward level 2's 200.
	level, xp, hp, atk = RPGLevelUp(1, 130)
	assert.Equal(t, 2, level)
	assert.Equal(t, 30, xp)
	assert.Equal(t, 10, hp)
	assert.Equal(t, 2, atk)

	// Enough for two levels in one fight.
	level, xp, hp, atk = RPGLevelUp(1, 310)
	assert.Equal(t, 3, level)
	assert.Equal(t, 10, xp)
	assert.Equal(t, 20, hp)
	assert.Equal(t, 4, atk)
}
