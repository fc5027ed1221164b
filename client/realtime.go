package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daypaste/dayclip/internal/domain"
)

const heartbeatInterval = 30 * time.Second

// Realtime is one websocket subscription to the server's event feed.
type Realtime struct {
	base string
}

func NewRealtime(base string) *Realtime {
	return &Realtime{base: strings.TrimRight(base, "/")}
}

func (r *Realtime) endpoint() (string, error) {
	parsed, err := url.Parse(r.base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %v", err)
	}

	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/realtime"

	return parsed.String(), nil
}

// Listen connects and forwards every event to output in arrival order. It
// returns when the context is cancelled or the connection drops; callers that
// want to survive a drop reconnect and re-query, since events sent while
// disconnected are gone.
func (r *Realtime) Listen(ctx context.Context, output chan<- domain.Event) error {
	endpoint, err := r.endpoint()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %v", endpoint, err)
	}
	defer conn.Close()

	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteJSON(map[string]string{"type": "h"}); err != nil {
					slog.DebugContext(
						ctx, "heartbeat write failed",
						slog.String("error", err.Error()),
						slog.String("module", "realtime"),
					)
					return
				}
			}
		}
	}()

	for {
		var event domain.Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("connection lost: %v", err)
		}

		select {
		case output <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
