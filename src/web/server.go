package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ashvale/ember/src/sys"
)

// Server is the local operations dashboard. It reads bot state from the
// database and only ever writes bot_config.
type Server struct {
	addr    string
	guildID string
	hub     *LogHub
	httpSrv *http.Server
}

func NewServer(addr, guildID string) *Server {
	srv := &Server{
		addr:    addr,
		guildID: guildID,
		hub:     NewLogHub(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleOverview)
	mux.HandleFunc("/economy", srv.handleEconomy)
	mux.HandleFunc("/config", srv.handleConfig)
	mux.HandleFunc("/logs", srv.handleLogs)
	mux.HandleFunc("/api/stats", srv.handleStatsJSON)
	mux.HandleFunc("/ws/logs", srv.hub.ServeWS)

	srv.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
	}
	return srv
}

// Start serves in the background until Shutdown.
func (srv *Server) Start() {
	go func() {
		sys.LogWeb("dashboard listening on http://%s", srv.addr)
		if err := srv.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sys.LogWeb("dashboard server failed: %v", err)
		}
	}()
}

func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.httpSrv.Shutdown(ctx)
}
