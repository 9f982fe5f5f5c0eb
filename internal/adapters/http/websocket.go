package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/territorymap/internal/core/ports"
	"github.com/samirrijal/territorymap/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to selection feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Session string `json:"session"` // viewer session id ("" = all sessions)
}

// WebSocketHandler returns a handler that relays selection events of viewer
// sessions to connected clients.
// Clients send JSON: {"action":"subscribe","session":"<id>"}
// The connection starts subscribed to the ?session= query value, where an
// empty value means every session.
func WebSocketHandler(feed ports.SelectionFeed) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]func()) // session -> cancel

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(data []byte) { _ = writeJSON(json.RawMessage(data)) }

		initial := c.Query("session")
		cancel, err := feed.Selections(initial, relay)
		if err != nil {
			slog.Warn("ws default subscribe failed", "session_id", initial, "error", err)
			return
		}
		subs[initial] = cancel

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[m.Session]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "session": m.Session})
					continue
				}
				cancel, err := feed.Selections(m.Session, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[m.Session] = cancel
				_ = writeJSON(map[string]string{"status": "subscribed", "session": m.Session})

			case "unsubscribe":
				if cancel, exists := subs[m.Session]; exists {
					cancel()
					delete(subs, m.Session)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "session": m.Session})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Session})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, cancel := range subs {
			cancel()
		}
		slog.Debug("ws client disconnected", "remote", remoteAddr)
	}
}
