package security

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLedger_Cooldown(t *testing.T) {
	clock := newFakeClock()
	ledger := NewMemoryLedger(MemoryLedgerConfig{Now: clock.Now})
	ctx := context.Background()

	allowed, err := ledger.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, allowed, "first submission passes")

	clock.Advance(30 * time.Second)
	allowed, _ = ledger.Allow(ctx, "203.0.113.7")
	assert.False(t, allowed, "second submission inside the window is blocked")

	// Blocked attempts do not refresh the timestamp: 60s after the first
	// accepted call the client is free again.
	clock.Advance(30 * time.Second)
	allowed, _ = ledger.Allow(ctx, "203.0.113.7")
	assert.True(t, allowed, "submission after the window passes")

	clock.Advance(59 * time.Second)
	allowed, _ = ledger.Allow(ctx, "203.0.113.7")
	assert.False(t, allowed, "accepted call refreshed the cooldown")
}

func TestMemoryLedger_IdentitiesAreIndependent(t *testing.T) {
	ledger := NewMemoryLedger(MemoryLedgerConfig{Now: newFakeClock().Now})
	ctx := context.Background()

	a, _ := ledger.Allow(ctx, "198.51.100.1")
	b, _ := ledger.Allow(ctx, "198.51.100.2")
	assert.True(t, a)
	assert.True(t, b)
	assert.Equal(t, 2, ledger.Len())
}

func TestMemoryLedger_PurgeWhenOverCapacity(t *testing.T) {
	clock := newFakeClock()
	ledger := NewMemoryLedger(MemoryLedgerConfig{Now: clock.Now})
	ctx := context.Background()

	for i := 0; i <= DefaultLedgerMaxEntries; i++ {
		_, _ = ledger.Allow(ctx, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Greater(t, ledger.Len(), DefaultLedgerMaxEntries)

	clock.Advance(DefaultLedgerWindow)
	allowed, err := ledger.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Less(t, ledger.Len(), DefaultLedgerMaxEntries)
	assert.Equal(t, 1, ledger.Len())
}

func TestMemoryLedger_PeriodicPurge(t *testing.T) {
	clock := newFakeClock()
	ledger := NewMemoryLedger(MemoryLedgerConfig{Now: clock.Now, PurgeInterval: 10})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = ledger.Allow(ctx, fmt.Sprintf("stale-%d", i))
	}
	clock.Advance(2 * DefaultLedgerWindow)

	// Checks 6..9 add fresh entries; check 10 triggers the sweep.
	for i := 0; i < 5; i++ {
		_, _ = ledger.Allow(ctx, fmt.Sprintf("fresh-%d", i))
	}
	assert.Equal(t, 5, ledger.Len())
}

func TestMemoryLedger_ConcurrentSameIdentity(t *testing.T) {
	ledger := NewMemoryLedger(MemoryLedgerConfig{Now: newFakeClock().Now})
	ctx := context.Background()

	var passed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := ledger.Allow(ctx, "203.0.113.9"); ok {
				passed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), passed.Load())
}
