// README: Booking store contract and the in-memory, session-scoped implementation.
package booking

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Store persists bookings per session. Update is optimistic: it only writes
// when the stored StatusVersion still equals prevVersion.
type Store interface {
	Create(ctx context.Context, sessionID string, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Booking, error)
	Update(ctx context.Context, b *Booking, prevVersion int) (bool, error)
}

type memEntry struct {
	booking Booking
	expires time.Time
}

// MemoryStore keeps bookings for ttl after the session's last write.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	bookings map[string]*memEntry
	sessions map[string][]string
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		bookings: make(map[string]*memEntry),
		sessions: make(map[string][]string),
	}
}

func (m *MemoryStore) Create(ctx context.Context, sessionID string, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bookings[b.ID]; exists {
		return ErrConflict
	}
	cp := cloneBooking(b)
	cp.SessionID = sessionID
	m.bookings[b.ID] = &memEntry{booking: cp}
	m.sessions[sessionID] = append(m.sessions[sessionID], b.ID)
	m.touch(sessionID)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.bookings[id]
	if !ok || m.now().After(e.expires) {
		return nil, ErrNotFound
	}
	b := cloneBooking(&e.booking)
	return &b, nil
}

// ListBySession returns the session's bookings, newest first.
func (m *MemoryStore) ListBySession(ctx context.Context, sessionID string) ([]*Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	ids := m.sessions[sessionID]
	out := make([]*Booking, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		e, ok := m.bookings[ids[i]]
		if !ok || now.After(e.expires) {
			continue
		}
		b := cloneBooking(&e.booking)
		out = append(out, &b)
	}
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, b *Booking, prevVersion int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.bookings[b.ID]
	if !ok || m.now().After(e.expires) {
		return false, ErrNotFound
	}
	if e.booking.StatusVersion != prevVersion {
		return false, nil
	}
	session := e.booking.SessionID
	e.booking = cloneBooking(b)
	e.booking.SessionID = session
	m.touch(session)
	return true, nil
}

// Sweep drops expired bookings and returns how many were removed.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for sid, ids := range m.sessions {
		kept := ids[:0]
		for _, id := range ids {
			e, ok := m.bookings[id]
			if !ok {
				continue
			}
			if now.After(e.expires) {
				delete(m.bookings, id)
				removed++
				continue
			}
			kept = append(kept, id)
		}
		if len(kept) == 0 {
			delete(m.sessions, sid)
		} else {
			m.sessions[sid] = kept
		}
	}
	return removed
}

// touch extends every booking in the session; callers hold the write lock.
func (m *MemoryStore) touch(sessionID string) {
	exp := m.now().Add(m.ttl)
	for _, id := range m.sessions[sessionID] {
		if e, ok := m.bookings[id]; ok {
			e.expires = exp
		}
	}
}

func cloneBooking(b *Booking) Booking {
	cp := *b
	cp.Addons = slices.Clone(b.Addons)
	cp.Quote.Addons = slices.Clone(b.Quote.Addons)
	if b.Payment != nil {
		p := *b.Payment
		cp.Payment = &p
	}
	cp.ConfirmedAt = cloneTime(b.ConfirmedAt)
	cp.CompletedAt = cloneTime(b.CompletedAt)
	cp.CancelledAt = cloneTime(b.CancelledAt)
	return cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
