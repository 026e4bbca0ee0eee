package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	cache := NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   interface{}
		ttl     time.Duration
		want    string
		wantErr bool
	}{
		{
			name:  "store and retrieve string",
			key:   "test-key-1",
			value: "test-value",
			ttl:   1 * time.Minute,
			want:  `"test-value"`,
		},
		{
			name:  "store and retrieve catalog entries",
			key:   "catalog:entries",
			value: []domain.CatalogEntry{{ID: "p-1", Name: "#35 Chain"}},
			ttl:   1 * time.Minute,
			want:  `[{"id":"p-1","name":"#35 Chain"}]`,
		},
		{
			name:    "unserializable value",
			key:     "test-key-3",
			value:   make(chan int),
			ttl:     1 * time.Minute,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.Set(ctx, tt.key, tt.value, tt.ttl)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			raw, ok := got.([]byte)
			if !ok {
				t.Fatalf("Get() returned %T, want []byte", got)
			}
			if string(raw) != tt.want {
				t.Errorf("Get() = %s, want %s", raw, tt.want)
			}
		})
	}
}

func TestMemoryCache_BatchReportRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	report := &domain.BatchReport{
		BatchID:    "20250101-120000-abcd1234",
		Mode:       domain.ModeDryRun,
		Statistics: domain.BatchStatistics{Total: 2, Ready: 1, Invalid: 1},
	}
	if err := cache.Set(ctx, "batch:"+report.BatchID, report, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "batch:"+report.BatchID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var decoded domain.BatchReport
	if err := json.Unmarshal(got.([]byte), &decoded); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
	if decoded.Statistics != report.Statistics {
		t.Errorf("Statistics = %+v, want %+v", decoded.Statistics, report.Statistics)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "short-ttl", "value", 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := cache.Get(ctx, "short-ttl"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiration error = %v, want %v", err, domain.ErrCacheMiss)
	}
	exists, err := cache.Exists(ctx, "short-ttl")
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false after expiration")
	}

	// Expired entries stay until swept
	if size := cache.Size(); size != 1 {
		t.Errorf("Size() = %d before sweep, want 1", size)
	}
	cache.sweep(time.Now())
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d after sweep, want 0", size)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, "value", 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "exists-test"

	exists, err := cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if exists {
		t.Errorf("Exists() = true, want false for non-existent key")
	}

	if err := cache.Set(ctx, key, "value", 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	exists, err = cache.Exists(ctx, key)
	if err != nil {
		t.Errorf("Exists() error = %v", err)
	}
	if !exists {
		t.Errorf("Exists() = false, want true after setting value")
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, i, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
	if _, err := cache.Get(ctx, "a"); err != domain.ErrCacheMiss {
		t.Errorf("Get(a) after clear error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	cache := NewMemoryCache(0)
	if err := cache.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := string(rune('a' + id))
			if err := cache.Set(ctx, key, id, 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
