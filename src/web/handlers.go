package web

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/ashvale/ember/src/sys"
)

type overviewData struct {
	CommandCount   int64
	Wallets        int64
	TotalCoins     int64
	AIRequests     int64
	RecentCommands []*sys.CommandLogEntry
}

func (srv *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	data := overviewData{}
	data.CommandCount, _ = sys.GetCommandCount(ctx)
	data.Wallets, data.TotalCoins, _ = sys.GetTotalCoins(ctx)
	if summary, err := sys.GetAIUsageSummary(ctx); err == nil {
		data.AIRequests = summary.Requests
	}
	data.RecentCommands, _ = sys.GetRecentCommandLog(ctx, 15)

	renderPage(w, overviewTemplate, data)
}

func (srv *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	richest, err := sys.GetRichest(r.Context(), srv.guildID, 25)
	if err != nil {
		http.Error(w, "failed to load economy", http.StatusInternalServerError)
		return
	}
	renderPage(w, economyTemplate, struct{ Richest []*sys.WalletRank }{richest})
}

// handleConfig renders and edits bot_config rows. This is the only table
// the dashboard writes.
func (srv *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		key, value := r.FormValue("key"), r.FormValue("value")
		if key == "" {
			http.Error(w, "key required", http.StatusBadRequest)
			return
		}
		if err := sys.SetBotConfig(ctx, key, value); err != nil {
			sys.LogWeb("config write failed: %v", err)
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		sys.LogWeb("config %q updated from dashboard", key)
		http.Redirect(w, r, "/config", http.StatusSeeOther)
		return
	}

	values, err := sys.GetAllBotConfig(ctx)
	if err != nil {
		http.Error(w, "failed to load config", http.StatusInternalServerError)
		return
	}
	renderPage(w, configTemplate, struct{ Values map[string]string }{values})
}

func (srv *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	renderPage(w, logsTemplate, nil)
}

// handleStatsJSON exposes the overview numbers for scripting.
func (srv *Server) handleStatsJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commandCount, _ := sys.GetCommandCount(ctx)
	wallets, coins, _ := sys.GetTotalCoins(ctx)
	var aiRequests, aiCacheHits int64
	if summary, err := sys.GetAIUsageSummary(ctx); err == nil {
		aiRequests = summary.Requests
		aiCacheHits = summary.CacheHits
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{
		"commands_served": commandCount,
		"wallets":         wallets,
		"total_coins":     coins,
		"ai_requests":     aiRequests,
		"ai_cache_hits":   aiCacheHits,
	})
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "page", data); err != nil {
		sys.LogWeb("template render failed: %v", err)
	}
}
