package security

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultLedgerWindow is the cooldown between accepted submissions from one client
	DefaultLedgerWindow = 60 * time.Second
	// DefaultLedgerMaxEntries is the size above which every check triggers a purge
	DefaultLedgerMaxEntries = 10000
	// DefaultLedgerPurgeInterval triggers a purge every N checks regardless of size
	DefaultLedgerPurgeInterval = 100
)

// Ledger records the last accepted submission per client identity
type Ledger interface {
	// Allow reports whether identity may submit now. An allowed call records the
	// current time against identity; a blocked call leaves the entry untouched.
	Allow(ctx context.Context, identity string) (bool, error)
}

// MemoryLedgerConfig holds configuration for the in-process ledger
type MemoryLedgerConfig struct {
	Window        time.Duration
	MaxEntries    int
	PurgeInterval int
	// Now overrides the clock (tests)
	Now func() time.Time
}

// DefaultMemoryLedgerConfig returns the documented defaults
func DefaultMemoryLedgerConfig() MemoryLedgerConfig {
	return MemoryLedgerConfig{
		Window:        DefaultLedgerWindow,
		MaxEntries:    DefaultLedgerMaxEntries,
		PurgeInterval: DefaultLedgerPurgeInterval,
		Now:           time.Now,
	}
}

// MemoryLedger is a process-local Ledger. It is discarded on restart and is not
// shared between instances; use RedisLedger for multi-instance deployments.
// Expired entries are purged on the request path, no background timer is needed.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time
	checks  uint64
	config  MemoryLedgerConfig
}

// NewMemoryLedger creates an in-process ledger, filling zero config values with defaults
func NewMemoryLedger(config MemoryLedgerConfig) *MemoryLedger {
	defaults := DefaultMemoryLedgerConfig()
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = defaults.MaxEntries
	}
	if config.PurgeInterval <= 0 {
		config.PurgeInterval = defaults.PurgeInterval
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	return &MemoryLedger{
		entries: make(map[string]time.Time),
		config:  config,
	}
}

// Allow implements Ledger. Check-and-update happens under one lock, so two
// concurrent submissions from the same identity cannot both pass.
func (l *MemoryLedger) Allow(_ context.Context, identity string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.config.Now()

	l.checks++
	if len(l.entries) > l.config.MaxEntries || l.checks%uint64(l.config.PurgeInterval) == 0 {
		l.purgeLocked(now)
	}

	if last, ok := l.entries[identity]; ok && now.Sub(last) < l.config.Window {
		return false, nil
	}

	l.entries[identity] = now
	return true, nil
}

// Len returns the number of tracked identities
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// purgeLocked removes every entry whose age is at least the window. Caller holds mu.
func (l *MemoryLedger) purgeLocked(now time.Time) {
	for identity, last := range l.entries {
		if now.Sub(last) >= l.config.Window {
			delete(l.entries, identity)
		}
	}
}
