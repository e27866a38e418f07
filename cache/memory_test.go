package cache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestMemory_SetGet verifies basic storage and retrieval.
func TestMemory_SetGet(t *testing.T) {
	store := NewMemory[string]()
	ctx := context.Background()

	if err := store.Set(ctx, "quotes/EUR", "1.08", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok := store.Get(ctx, "quotes/EUR")
	if !ok {
		t.Fatal("expected hit")
	}
	if v != "1.08" {
		t.Errorf("expected '1.08', got %q", v)
	}
}

// TestMemory_Miss verifies a miss returns the zero value.
func TestMemory_Miss(t *testing.T) {
	store := NewMemory[int]()

	v, ok := store.Get(context.Background(), "absent")
	if ok {
		t.Error("expected miss")
	}
	if v != 0 {
		t.Errorf("expected zero value, got %d", v)
	}
}

// TestMemory_Expiry verifies expired entries are misses and lazily removed.
func TestMemory_Expiry(t *testing.T) {
	store := NewMemory[string]()
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("expected expired entry to miss")
	}
	if store.Len() != 0 {
		t.Errorf("expected expired entry to be removed, Len=%d", store.Len())
	}
}

// TestMemory_ZeroTTLNotStored verifies TTL<=0 skips storage.
func TestMemory_ZeroTTLNotStored(t *testing.T) {
	store := NewMemory[string]()
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("expected TTL=0 value not to be stored")
	}
}

// TestMemory_Delete verifies removal is idempotent.
func TestMemory_Delete(t *testing.T) {
	store := NewMemory[string]()
	ctx := context.Background()

	_ = store.Set(ctx, "k", "v", time.Minute)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("expected deleted entry to miss")
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("expected idempotent delete, got: %v", err)
	}
}

// TestMemory_InvalidKeyRejected verifies key validation on Set.
func TestMemory_InvalidKeyRejected(t *testing.T) {
	store := NewMemory[string]()

	if err := store.Set(context.Background(), "  ", "v", time.Minute); err == nil {
		t.Error("expected error for blank key")
	}
}

// TestMemory_Concurrent verifies concurrent access is safe.
func TestMemory_Concurrent(t *testing.T) {
	store := NewMemory[int]()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(ctx, "shared", n, time.Minute)
		}(i)
		go func() {
			defer wg.Done()
			store.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if _, ok := store.Get(ctx, "shared"); !ok {
		t.Error("expected shared key to be present")
	}
}

// TestValidateKey verifies key validation rules.
func TestValidateKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want error
	}{
		{"valid", "quotes/EUR", nil},
		{"empty", "", ErrInvalidKey},
		{"blank", "   ", ErrInvalidKey},
		{"newline", "a\nb", ErrInvalidKey},
		{"too long", strings.Repeat("k", MaxKeyLength+1), ErrKeyTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.want == nil && err != nil {
				t.Errorf("expected nil, got: %v", err)
			}
			if tt.want != nil && err != tt.want {
				t.Errorf("expected %v, got: %v", tt.want, err)
			}
		})
	}
}
