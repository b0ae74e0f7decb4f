package sys

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentLogKeepsLiteralPercent(t *testing.T) {
	var mu sync.Mutex
	var lines []string
	RegisterLogTap(func(line string) {
		mu.Lock()
		lines = append(lines, line)
		mu.Unlock()
	})

	// User-supplied text (bet titles, stock names) may contain %; it must
	// never be re-interpreted as a format verb.
	LogBets("auto-closed bet %s (%s)", "b-1", "Wolves win 100% for sure")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, lines)
	last := lines[len(lines)-1]
	assert.Contains(t, last, "Wolves win 100% for sure")
	assert.NotContains(t, last, "%!")
}
