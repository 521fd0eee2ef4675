package notifications

import (
	"context"
	"sync"

	"tengemart/internal/marketplace"
)

// Hub owns one listener per authenticated session. Listeners open on login
// (when a token exists) and close on logout or session replacement.
type Hub struct {
	mu        sync.Mutex
	listeners map[string]*Listener
	wsBase    string
	api       *marketplace.Client
}

func NewHub(wsBase string, api *marketplace.Client) *Hub {
	return &Hub{listeners: make(map[string]*Listener), wsBase: wsBase, api: api}
}

// Subscribe opens the live channel for a session, replacing any prior
// subscription for the same sid.
func (h *Hub) Subscribe(ctx context.Context, sid, token string) (*Inbox, error) {
	l, err := Dial(ctx, h.wsBase, token)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	old := h.listeners[sid]
	h.listeners[sid] = l
	h.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return l.Inbox(), nil
}

// Inbox returns the session's projection, or nil when no subscription is
// live (anonymous, or the dial failed).
func (h *Hub) Inbox(sid string) *Inbox {
	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.listeners[sid]; ok {
		return l.Inbox()
	}
	return nil
}

// Open is the panel-open gesture: reset the unread counter locally and fire
// the best-effort mark-as-read call. A failed call is ignored; the local
// reset already happened.
func (h *Hub) Open(ctx context.Context, sid, token string) {
	if in := h.Inbox(sid); in != nil {
		in.MarkOpened()
	}
	if token != "" {
		_ = h.api.MarkNotificationsRead(ctx, token)
	}
}

// Drop closes a session's subscription, if any.
func (h *Hub) Drop(sid string) {
	h.mu.Lock()
	l := h.listeners[sid]
	delete(h.listeners, sid)
	h.mu.Unlock()
	if l != nil {
		l.Close()
	}
}

// Shutdown closes everything; used on process exit in tests.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	ls := make([]*Listener, 0, len(h.listeners))
	for sid, l := range h.listeners {
		ls = append(ls, l)
		delete(h.listeners, sid)
	}
	h.mu.Unlock()
	for _, l := range ls {
		l.Close()
	}
}
