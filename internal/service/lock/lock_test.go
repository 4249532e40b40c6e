package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestManager(ttl time.Duration) (*Manager, *clock) {
	c := &clock{t: time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(ttl)
	m.now = c.now
	return m, c
}

func TestAcquire_OtherOwnerGetsLocked(t *testing.T) {
	m, _ := newTestManager(time.Minute)

	l, err := m.Acquire(1, "desktop")
	require.NoError(t, err)
	assert.NotEmpty(t, l.Token)

	holder, err := m.Acquire(1, "mobile:pixel")
	assert.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, "desktop", holder.Owner)
	assert.Empty(t, holder.Token)

	got, ok := m.Check(1)
	require.True(t, ok)
	assert.Equal(t, "desktop", got.Owner)
	assert.Empty(t, got.Token)
}

func TestAcquire_SameOwnerRefreshes(t *testing.T) {
	m, c := newTestManager(time.Minute)

	first, err := m.Acquire(1, "desktop")
	require.NoError(t, err)

	c.advance(30 * time.Second)
	second, err := m.Acquire(1, "desktop")
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestLock_Expires(t *testing.T) {
	m, c := newTestManager(time.Minute)

	_, err := m.Acquire(1, "desktop")
	require.NoError(t, err)

	c.advance(time.Minute)
	_, ok := m.Check(1)
	assert.False(t, ok)

	_, err = m.Acquire(1, "mobile:pixel")
	assert.NoError(t, err)
}

func TestRelease(t *testing.T) {
	m, _ := newTestManager(time.Minute)

	l, err := m.Acquire(1, "desktop")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Release(1, "wrong"), ErrNotHeld)
	require.NoError(t, m.Release(1, l.Token))
	_, ok := m.Check(1)
	assert.False(t, ok)

	assert.NoError(t, m.Release(2, "anything"))
}

func TestHeldByOther(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	_, err := m.Acquire(1, "desktop")
	require.NoError(t, err)

	_, held := m.HeldByOther(1, "desktop")
	assert.False(t, held)

	l, held := m.HeldByOther(1, "mobile:pixel")
	assert.True(t, held)
	assert.Equal(t, "desktop", l.Owner)
}

func TestSweep(t *testing.T) {
	m, c := newTestManager(time.Minute)
	_, _ = m.Acquire(1, "a")
	c.advance(40 * time.Second)
	_, _ = m.Acquire(2, "b")
	c.advance(30 * time.Second)

	assert.Equal(t, 1, m.Sweep())
	_, ok := m.Check(2)
	assert.True(t, ok)
}

func TestAcquire_Concurrent(t *testing.T) {
	m, _ := newTestManager(time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			owner := "owner-" + string(rune('a'+i))
			if _, err := m.Acquire(7, owner); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestLock_CacheEvictsByWallClock(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	_, err := m.Acquire(3, "a")
	require.NoError(t, err)
	require.Equal(t, 1, m.locks.Len())

	time.Sleep(60 * time.Millisecond)

	_, ok := m.Check(3)
	assert.False(t, ok)
	m.Sweep()
	assert.Zero(t, m.locks.Len())

	// просроченная запись не мешает новому владельцу
	l, err := m.Acquire(3, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", l.Owner)
}
