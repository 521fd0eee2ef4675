package notifications

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"tengemart/internal/domain"
)

// event is the inbound frame shape on the live channel.
type event struct {
	Notification domain.Notification `json:"notification"`
}

// Listener holds one live subscription for an authenticated session. The
// read loop appends to the inbox until the connection drops or Close is
// called; missed messages are not backfilled.
type Listener struct {
	inbox *Inbox
	conn  *websocket.Conn
	done  chan struct{}
}

// Dial opens the subscription at <wsBase>/notifications/?token=<bearer> and
// starts the read loop.
func Dial(ctx context.Context, wsBase, token string) (*Listener, error) {
	u, err := url.Parse(wsBase)
	if err != nil {
		return nil, fmt.Errorf("parse ws base: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/notifications/"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial notifications (%d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial notifications: %w", err)
	}

	l := &Listener{inbox: NewInbox(), conn: conn, done: make(chan struct{})}
	go l.readLoop()
	return l, nil
}

func (l *Listener) readLoop() {
	defer close(l.done)
	for {
		var ev event
		if err := l.conn.ReadJSON(&ev); err != nil {
			l.inbox.markStale()
			return
		}
		if ev.Notification.Message == "" {
			continue
		}
		l.inbox.Push(ev.Notification)
	}
}

func (l *Listener) Inbox() *Inbox { return l.inbox }

// Close tears the subscription down and waits for the read loop to exit.
func (l *Listener) Close() {
	_ = l.conn.Close()
	<-l.done
}
