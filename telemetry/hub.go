// Package telemetry streams engine stats to websocket clients and accepts
// simple remote control messages.
package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hero-engine/core"
	"hero-engine/engine"
	"hero-engine/quality"
)

// Snapshot is the JSON message sent to clients.
type Snapshot struct {
	Frames        uint64          `json:"frames"`
	SubmitErrors  uint64          `json:"submitErrors"`
	QueueDropped  int             `json:"queueDropped"`
	SpawnDropped  int             `json:"spawnDropped"`
	LiveParticles int             `json:"liveParticles"`
	Tier          string          `json:"tier,omitempty"`
	Profile       quality.Profile `json:"profile"`
	Verdict       string          `json:"verdict"`
	MonitorState  string          `json:"monitorState"`
	MeanFrameMs   float64         `json:"meanFrameMs"`
	Phase         string          `json:"phase"`
	Scene         string          `json:"scene,omitempty"`
	Incoming      string          `json:"incoming,omitempty"`
	Progress      float32         `json:"progress"`
}

func SnapshotOf(s engine.Stats) Snapshot {
	snap := Snapshot{
		Frames:        s.Frames,
		SubmitErrors:  s.SubmitErrors,
		QueueDropped:  s.QueueDropped,
		SpawnDropped:  s.SpawnDropped,
		LiveParticles: s.LiveParticles,
		Profile:       s.Profile,
		Verdict:       s.Verdict.String(),
		MonitorState:  s.MonitorState.String(),
		MeanFrameMs:   s.MeanFrameMs,
		Phase:         s.Phase.String(),
		Scene:         s.Scene,
		Incoming:      s.Incoming,
		Progress:      s.Progress,
	}
	if s.TierKnown {
		snap.Tier = s.Tier.String()
	}
	return snap
}

// Command is a control message from a client. Fields are optional; the
// first one set wins.
type Command struct {
	Select string  `json:"select,omitempty"`
	Next   bool    `json:"next,omitempty"`
	Pulse  float32 `json:"pulse,omitempty"`
}

// Controller receives client commands. *engine.Engine satisfies it.
type Controller interface {
	Select(id string)
	Next()
	Pulse(strength float32)
}

// Source supplies the stats to broadcast. *engine.Engine satisfies it.
type Source interface {
	Stats() engine.Stats
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tooling only
	},
}

// Hub tracks connected clients. Each connection has its own write lock.
type Hub struct {
	source     Source
	controller Controller

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex
}

// NewHub creates a hub. controller may be nil for a read-only stream.
func NewHub(source Source, controller Controller) *Hub {
	return &Hub{
		source:     source,
		controller: controller,
		clients:    make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request, sends the current snapshot and then
// reads commands until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.Logger().Warn("telemetry upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	h.clientsMu.Lock()
	h.clients[conn] = connMu
	h.clientsMu.Unlock()
	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, conn)
		h.clientsMu.Unlock()
	}()

	connMu.Lock()
	err = conn.WriteJSON(SnapshotOf(h.source.Stats()))
	connMu.Unlock()
	if err != nil {
		return
	}

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				core.Logger().Debug("telemetry read ended", "err", err)
			}
			return
		}
		h.apply(cmd)
	}
}

func (h *Hub) apply(cmd Command) {
	if h.controller == nil {
		return
	}
	switch {
	case cmd.Select != "":
		h.controller.Select(cmd.Select)
	case cmd.Next:
		h.controller.Next()
	case cmd.Pulse > 0:
		h.controller.Pulse(cmd.Pulse)
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Broadcast sends one snapshot to every client, dropping those that fail.
func (h *Hub) Broadcast() {
	snap := SnapshotOf(h.source.Stats())

	h.clientsMu.RLock()
	var failed []*websocket.Conn
	for conn, mu := range h.clients {
		mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		err := conn.WriteJSON(snap)
		mu.Unlock()
		if err != nil {
			failed = append(failed, conn)
		}
	}
	h.clientsMu.RUnlock()

	if len(failed) > 0 {
		h.clientsMu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.clientsMu.Unlock()
	}
}

// Run broadcasts every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Broadcast()
		}
	}
}

// ListenAndServe serves the hub at /ws on addr until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	core.Logger().Info("telemetry listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
