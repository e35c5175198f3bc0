// Package web exposes the daemon's state over HTTP: a JSON status endpoint,
// a refresh trigger, and a websocket stream of fix snapshots.
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gpsnmead/internal/gps"
	"gpsnmead/internal/pps"
)

// FixSource provides the latest fix snapshot.
type FixSource interface {
	Snapshot() gps.Snapshot
}

// PPSSource provides pulse-per-second statistics. May be nil.
type PPSSource interface {
	Snapshot() pps.Snapshot
}

// Refresher accepts external refresh requests.
type Refresher interface {
	RequestRefresh() gps.RefreshResult
}

type statusResponse struct {
	UptimeSec float64      `json:"uptime_sec"`
	GPS       gps.Snapshot `json:"gps"`
	PPS       pps.Snapshot `json:"pps"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Status UI may be served from anywhere on the local network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type server struct {
	start      time.Time
	fix        FixSource
	pps        PPSSource
	refresher  Refresher
	wsInterval time.Duration
}

func Handler(fix FixSource, ppsSrc PPSSource, refresher Refresher) http.Handler {
	s := &server{
		start:      time.Now().UTC(),
		fix:        fix,
		pps:        ppsSrc,
		refresher:  refresher,
		wsInterval: time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/fix/ws", s.handleFixWS)
	return mux
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := statusResponse{
		UptimeSec: time.Since(s.start).Seconds(),
		GPS:       s.fix.Snapshot(),
	}
	if s.pps != nil {
		resp.PPS = s.pps.Snapshot()
	}
	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.refresher == nil {
		http.Error(w, "refresh unavailable", http.StatusNotFound)
		return
	}
	result := s.refresher.RequestRefresh()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"result": result.String()})
}

// handleFixWS pushes a fix snapshot immediately and then once per interval
// until the client goes away.
func (s *server) handleFixWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web fix ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(s.fix.Snapshot()); err != nil {
		return
	}
	ticker := time.NewTicker(s.wsInterval)
	defer ticker.Stop()
	for range ticker.C {
		if err := conn.WriteJSON(s.fix.Snapshot()); err != nil {
			return
		}
	}
}
