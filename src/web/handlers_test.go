package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ashvale/ember/src/sys"
)

// statsSchema mirrors the tables the read-only handlers touch.
const statsSchema = `
CREATE TABLE command_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id TEXT NOT NULL DEFAULT '',
	channel_id TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL,
	command TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE users (
	guild_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	coins INTEGER NOT NULL DEFAULT 0,
	daily_streak INTEGER NOT NULL DEFAULT 0,
	last_daily TIMESTAMP,
	PRIMARY KEY (guild_id, user_id)
);
CREATE TABLE ai_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id TEXT NOT NULL DEFAULT '',
	channel_id TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	prompt_chars INTEGER NOT NULL DEFAULT 0,
	response_chars INTEGER NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	cache_hit INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

func setupStatsDB(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(statsSchema)
	require.NoError(t, err)

	prev := sys.DB
	sys.DB = db
	t.Cleanup(func() {
		sys.DB = prev
		db.Close()
	})
}

func TestHandleStatsJSON(t *testing.T) {
	setupStatsDB(t)
	_, err := sys.DB.Exec(`INSERT INTO users (guild_id, user_id, coins) VALUES ('g1', 'u1', 100), ('g1', 'u2', 250)`)
	require.NoError(t, err)
	_, err = sys.DB.Exec(`INSERT INTO command_log (user_id, command) VALUES ('u1', 'coins')`)
	require.NoError(t, err)

	srv := NewServer("127.0.0.1:0", "g1")
	rec := httptest.NewRecorder()
	srv.handleStatsJSON(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["commands_served"])
	assert.EqualValues(t, 2, body["wallets"])
	assert.EqualValues(t, 350, body["total_coins"])
}

func TestHandleEconomyListsRichestFirst(t *testing.T) {
	setupStatsDB(t)
	_, err := sys.DB.Exec(`INSERT INTO users (guild_id, user_id, coins) VALUES ('g1', 'pauper', 5), ('g1', 'tycoon', 9000)`)
	require.NoError(t, err)

	srv := NewServer("127.0.0.1:0", "g1")
	rec := httptest.NewRecorder()
	srv.handleEconomy(rec, httptest.NewRequest(http.MethodGet, "/economy", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tycoon")
	assert.Less(t, strings.Index(body, "tycoon"), strings.Index(body, "pauper"))
}

func TestHandleLogsPageRenders(t *testing.T) {
	srv := NewServer("127.0.0.1:0", "g1")
	rec := httptest.NewRecorder()
	srv.handleLogs(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/ws/logs")
}

func TestHandleConfigRejectsEmptyKey(t *testing.T) {
	setupStatsDB(t)
	srv := NewServer("127.0.0.1:0", "g1")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/config", nil)
	srv.handleConfig(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
