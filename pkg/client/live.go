package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Notification is one message from the server's live channel.
type Notification struct {
	Type  string `json:"type"`
	Scope string `json:"scope,omitempty"`
}

// NotifyGraphUpdate is sent when the dataset behind the graph endpoint
// changed. It only invites a refresh; the client decides when to re-fetch.
const NotifyGraphUpdate = "graph:update"

// Listener subscribes to the server's live channel and delivers update
// notifications until the connection drops or the context is cancelled. No
// automatic reconnection: the channel closing is itself a signal the caller
// may surface.
type Listener struct {
	conn   *websocket.Conn
	logger *zap.Logger
	ch     chan Notification
}

// Listen dials the live endpoint of the API at baseURL.
func Listen(ctx context.Context, baseURL string, logger *zap.Logger) (*Listener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/live"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	l := &Listener{conn: conn, logger: logger, ch: make(chan Notification, 16)}
	go l.read()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return l, nil
}

// Notifications returns the channel of server notifications. It is closed
// when the connection ends.
func (l *Listener) Notifications() <-chan Notification { return l.ch }

// Close terminates the subscription.
func (l *Listener) Close() error { return l.conn.Close() }

func (l *Listener) read() {
	defer close(l.ch)
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.logger.Warn("live channel closed", zap.Error(err))
			}
			return
		}
		var n Notification
		if err := json.Unmarshal(data, &n); err != nil {
			l.logger.Warn("malformed live notification", zap.Error(err))
			continue
		}
		select {
		case l.ch <- n:
		default:
			// Slow consumer; drop rather than block the read loop. The
			// notification is only a refresh hint.
		}
	}
}
