// Package transport delivers intercepted-response batches from the
// browser-side collector into the reconciliation engine. The collector runs
// in the host page's privileged context and pushes over a local websocket,
// either already-decoded (label, count) events or the raw response text.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"

	"github.com/quickbar/cli/internal/stream"
)

// Applier consumes one decoded batch. Each batch is applied to completion
// before the next message is read; there is no coalescing.
type Applier interface {
	Apply(events []stream.Event)
}

// message is the collector's wire envelope.
type message struct {
	// Type is "events" for pre-decoded batches or "raw" for an intercepted
	// response body the server should decode itself.
	Type    string         `json:"type"`
	Events  []stream.Event `json:"events,omitempty"`
	Payload string         `json:"payload,omitempty"`
}

// Server accepts collector connections and feeds batches to the applier.
type Server struct {
	applier  Applier
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New builds a server listening on addr. The endpoint is /updates.
func New(addr string, applier Applier) *Server {
	s := &Server{
		applier: applier,
		// The collector connects from the host page's origin.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/updates", s.handleUpdates)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving collector connections until Shutdown.
func (s *Server) ListenAndServe() error {
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	if err != nil {
		return fmt.Errorf("update listener failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		pterm.Warning.Printfln("transport: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	pterm.Debug.Printfln("transport: collector connected from %s", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pterm.Warning.Printfln("transport: collector connection lost: %v", err)
			}
			return
		}
		if events, ok := decodeMessage(data); ok {
			s.applier.Apply(events)
		}
	}
}

// decodeMessage turns one collector message into a batch. Malformed
// messages are dropped with a warning; one bad message never tears down the
// connection.
func decodeMessage(data []byte) ([]stream.Event, bool) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		pterm.Warning.Printfln("transport: dropping malformed message: %v", err)
		return nil, false
	}
	switch msg.Type {
	case "events":
		return sanitize(msg.Events), true
	case "raw":
		return stream.Decode(msg.Payload), true
	default:
		pterm.Warning.Printfln("transport: dropping message with unknown type %q", msg.Type)
		return nil, false
	}
}

// sanitize drops events a well-behaved collector would never send; the
// collector duplicates the decoder's filter but its copy can drift.
func sanitize(events []stream.Event) []stream.Event {
	out := events[:0]
	for _, ev := range events {
		if ev.Label == "" || ev.Count < 0 {
			continue
		}
		out = append(out, ev)
	}
	return out
}
