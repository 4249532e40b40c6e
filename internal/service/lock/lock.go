package lock

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrLocked  = errors.New("repair is being edited by someone else")
	ErrNotHeld = errors.New("lock is not held with this token")
)

type Lock struct {
	RepairID  int64     `json:"repairId"`
	Owner     string    `json:"owner"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Manager keeps advisory edit locks in memory. A lock only tells other
// editors that somebody has the repair open; it never blocks a write.
//
// Entries live in a ttl cache that drops them once the ttl has passed; mu
// makes check-then-set sequences atomic.
type Manager struct {
	mu    sync.Mutex
	ttl   time.Duration
	locks *ttlcache.Cache[int64, Lock]
	now   func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{
		ttl: ttl,
		locks: ttlcache.New[int64, Lock](
			ttlcache.WithTTL[int64, Lock](ttl),
			// чтение не продлевает блокировку
			ttlcache.WithDisableTouchOnHit[int64, Lock](),
		),
		now: time.Now,
	}
}

// Check returns the live lock of the repair, without its token.
func (m *Manager) Check(repairID int64) (Lock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.live(repairID)
	if !ok {
		return Lock{}, false
	}
	l.Token = ""
	return l, true
}

// Acquire takes or refreshes the lock for owner. When somebody else holds a
// live lock it returns that holder (without token) and ErrLocked.
func (m *Manager) Acquire(repairID int64, owner string) (Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, ok := m.live(repairID); ok {
		if l.Owner != owner {
			l.Token = ""
			return l, ErrLocked
		}
		l.ExpiresAt = now.Add(m.ttl)
		m.locks.Set(repairID, l, ttlcache.DefaultTTL)
		return l, nil
	}

	l := Lock{
		RepairID:  repairID,
		Owner:     owner,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	m.locks.Set(repairID, l, ttlcache.DefaultTTL)

	return l, nil
}

// Release drops the lock. An expired or missing lock is not an error.
func (m *Manager) Release(repairID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.live(repairID)
	if !ok {
		return nil
	}
	if l.Token != token {
		return ErrNotHeld
	}
	m.locks.Delete(repairID)

	return nil
}

// HeldByOther reports whether a live lock on the repair belongs to someone
// other than owner.
func (m *Manager) HeldByOther(repairID int64, owner string) (Lock, bool) {
	l, ok := m.Check(repairID)
	if !ok || l.Owner == owner {
		return Lock{}, false
	}
	return l, true
}

// Sweep forgets expired locks and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, item := range m.locks.Items() {
		if !now.Before(item.Value().ExpiresAt) {
			m.locks.Delete(id)
			n++
		}
	}
	m.locks.DeleteExpired()

	return n
}

// live must be called with mu held.
func (m *Manager) live(repairID int64) (Lock, bool) {
	item := m.locks.Get(repairID)
	if item == nil {
		return Lock{}, false
	}
	l := item.Value()
	if !m.now().Before(l.ExpiresAt) {
		return Lock{}, false
	}
	return l, true
}
