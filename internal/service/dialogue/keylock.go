package dialogue

import (
	"context"
	"sync"
)

// keyLock serializes work per key while letting different keys proceed in parallel.
// Entries are dropped once nobody holds or waits for them.
type keyLock struct {
	mu      sync.Mutex
	entries map[string]*keyEntry
}

type keyEntry struct {
	sem  chan struct{}
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{entries: make(map[string]*keyEntry)}
}

// Lock blocks until key is free or ctx is done. The returned func releases the key.
func (l *keyLock) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &keyEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return func() {
			<-entry.sem
			l.release(key, entry)
		}, nil
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ctx.Err()
	}
}

func (l *keyLock) release(key string, entry *keyEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *keyLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
