package sys

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyStreakAfter(t *testing.T) {
	now := time.Date(2026, 8, 23, 15, 0, 0, 0, time.UTC)
	claimedAt := func(at time.Time) sql.NullTime {
		return sql.NullTime{Time: at, Valid: true}
	}

	tests := []struct {
		name       string
		last       sql.NullTime
		streak     int
		wantStreak int
		wantClaim  bool
	}{
		{"first ever claim", sql.NullTime{}, 0, 1, true},
		{"already claimed today", claimedAt(now.Add(-2 * time.Hour)), 4, 4, false},
		{"claimed at midnight today", claimedAt(now.Truncate(24 * time.Hour)), 4, 4, false},
		{"claimed yesterday continues streak", claimedAt(now.Add(-24 * time.Hour)), 4, 5, true},
		{"late yesterday still continues", claimedAt(now.Truncate(24 * time.Hour).Add(-time.Minute)), 4, 5, true},
		{"missed a day resets", claimedAt(now.Add(-72 * time.Hour)), 9, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, claimable := dailyStreakAfter(tt.last, tt.streak, now)
			assert.Equal(t, tt.wantStreak, streak)
			assert.Equal(t, tt.wantClaim, claimable)
		})
	}
}
