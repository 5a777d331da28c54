package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/model"
)

func setupKVCache(t *testing.T) *KVCache {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "cache.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		t.Fatalf("auto migrate kv_entries: %v", err)
	}

	return NewKVCache(db)
}

func TestKVCacheSetGetDelete(t *testing.T) {
	cache := setupKVCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "prediction:clean:1", `{"status":"success"}`, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := cache.Get(ctx, "prediction:clean:1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != `{"status":"success"}` {
		t.Fatalf("Get() = %q, found=%v", value, found)
	}

	if err := cache.Set(ctx, "prediction:clean:1", "v2", 0); err != nil {
		t.Fatalf("Set(update) error = %v", err)
	}
	value, found, err = cache.Get(ctx, "prediction:clean:1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != "v2" {
		t.Fatalf("Get() after update = %q, found=%v", value, found)
	}

	if err := cache.Delete(ctx, "prediction:clean:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, found, err = cache.Get(ctx, "prediction:clean:1")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Fatalf("Get() expected found=false after delete")
	}
}

func TestKVCacheExpiresEntries(t *testing.T) {
	cache := setupKVCache(t)
	ctx := context.Background()
	now := time.Date(2026, time.February, 14, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "short", "v", time.Minute); err != nil {
		t.Fatalf("Set(short) error = %v", err)
	}
	if err := cache.Set(ctx, "long", "v", time.Hour); err != nil {
		t.Fatalf("Set(long) error = %v", err)
	}
	if _, found, _ := cache.Get(ctx, "short"); !found {
		t.Fatalf("Get(short) expected found before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, found, err := cache.Get(ctx, "short"); err != nil || found {
		t.Fatalf("Get(short) after expiry = %v, %v", found, err)
	}

	now = now.Add(2 * time.Hour)
	purged, err := cache.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if purged != 1 {
		t.Fatalf("Purge() = %d, want 1", purged)
	}
}

func TestKVCacheRejectsEmptyKey(t *testing.T) {
	cache := setupKVCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "", "v", 0); err == nil {
		t.Fatalf("Set() expected error for empty key")
	}
	if _, _, err := cache.Get(ctx, " "); err == nil {
		t.Fatalf("Get() expected error for empty key")
	}
	if err := cache.Delete(ctx, ""); err == nil {
		t.Fatalf("Delete() expected error for empty key")
	}
}
