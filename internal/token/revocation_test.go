package token

import (
	"context"
	"testing"
	"time"
)

// TestMemoryStore_RevokeAndLookup 吊销后应该查得到
func TestMemoryStore_RevokeAndLookup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Revoke(ctx, "tok-1", time.Hour); err != nil {
		t.Fatalf("Revoke error = %v", err)
	}

	revoked, err := store.IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked error = %v", err)
	}
	if !revoked {
		t.Error("IsRevoked(tok-1) = false, want true")
	}

	revoked, err = store.IsRevoked(ctx, "tok-other")
	if err != nil {
		t.Fatalf("IsRevoked error = %v", err)
	}
	if revoked {
		t.Error("IsRevoked(tok-other) = true, want false")
	}
}

// TestMemoryStore_ExpiredEntrySwept 过期条目在查询时被清掉
func TestMemoryStore_ExpiredEntrySwept(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Revoke(ctx, "tok-short", 5*time.Millisecond); err != nil {
		t.Fatalf("Revoke error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "tok-short")
	if err != nil {
		t.Fatalf("IsRevoked error = %v", err)
	}
	if revoked {
		t.Error("IsRevoked after expiry = true, want false")
	}
	if store.Len() != 0 {
		t.Errorf("Len after sweep = %d, want 0", store.Len())
	}
}

// TestMemoryStore_ZeroTTLIgnored 已经过期的 token 不用记录
func TestMemoryStore_ZeroTTLIgnored(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Revoke(ctx, "tok-dead", 0); err != nil {
		t.Fatalf("Revoke error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}
