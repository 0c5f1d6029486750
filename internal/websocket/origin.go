package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

const upgraderBufferSize = 1024

// NewSecureUpgrader builds an upgrader that only accepts the given origins.
// Entries are trimmed and blanks dropped; with nothing left the local dev
// frontend origin is assumed. An empty Origin header (same-origin or
// non-browser client) is always accepted.
func NewSecureUpgrader(allowedOrigins []string, logger *slog.Logger) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = true
		}
	}
	if len(allowed) == 0 {
		allowed["http://localhost:3000"] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  upgraderBufferSize,
		WriteBufferSize: upgraderBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}
			if logger != nil {
				logger.Warn("rejected websocket connection",
					slog.String("origin", origin),
					slog.String("remote_ip", r.RemoteAddr))
			}
			return false
		},
	}
}

// DefaultUpgrader accepts any origin; development use only
func DefaultUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  upgraderBufferSize,
		WriteBufferSize: upgraderBufferSize,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
}
