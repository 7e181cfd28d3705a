package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyLockWaitHonorsContext(t *testing.T) {
	locks := newKeyLock()

	unlock, err := locks.Lock(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Lock err: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := locks.Lock(ctx, "alice"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while waiting, got %v", err)
	}

	other, err := locks.Lock(context.Background(), "bob")
	if err != nil {
		t.Fatalf("other key must not block: %v", err)
	}
	other()
	unlock()

	if locks.size() != 0 {
		t.Fatalf("expected no entries after release, got %d", locks.size())
	}
}
