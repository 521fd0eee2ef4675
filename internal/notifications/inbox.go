package notifications

import (
	"sync"

	"tengemart/internal/domain"
)

// Inbox is the client-side projection of the live channel: an ordered
// message list (most recent first) and an unread counter. It is written by
// one listener goroutine and read by request handlers, so all access is
// mutex-guarded.
type Inbox struct {
	mu     sync.Mutex
	items  []domain.Notification
	unread int
	stale  bool
}

func NewInbox() *Inbox { return &Inbox{} }

func (in *Inbox) Push(n domain.Notification) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = append([]domain.Notification{n}, in.items...)
	in.unread++
}

// Snapshot copies the current list and unread count.
func (in *Inbox) Snapshot() ([]domain.Notification, int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]domain.Notification, len(in.items))
	copy(out, in.items)
	return out, in.unread
}

func (in *Inbox) Unread() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.unread
}

// MarkOpened resets the unread counter, regardless of its prior value. The
// list itself is untouched.
func (in *Inbox) MarkOpened() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.unread = 0
}

// Clear empties the list locally. Purely a UI state change; the backend is
// not told.
func (in *Inbox) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = nil
}

// markStale flags that the live connection dropped and the projection may be
// behind. There is no automatic reconnect; a fresh login re-subscribes.
func (in *Inbox) markStale() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.stale = true
}

func (in *Inbox) Stale() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stale
}
