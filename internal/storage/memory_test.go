package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStorePutOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Put(ctx, "a.glb", []byte("one"), "model/gltf-binary", false); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	if err := store.Put(ctx, "a.glb", []byte("two"), "model/gltf-binary", false); !errors.Is(err, ErrKeyExists) {
		t.Fatalf("duplicate no-overwrite put = %v; want ErrKeyExists", err)
	}
	if err := store.Put(ctx, "a.glb", []byte("two"), "model/gltf-binary", true); err != nil {
		t.Fatalf("overwrite put failed: %v", err)
	}

	data, err := store.Get(ctx, "a.glb")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("get = %q; want %q", data, "two")
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v; want ErrNotFound", err)
	}
	if err := store.Stat(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Stat(missing) = %v; want ErrNotFound", err)
	}
	if _, err := store.SignedURL(ctx, "missing", time.Hour); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SignedURL(missing) = %v; want ErrNotFound", err)
	}
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, key := range []string{"100_a.glb", "100_a.usdz", "200_b.stl"} {
		if err := store.Put(ctx, key, []byte("x"), "application/octet-stream", false); err != nil {
			t.Fatalf("put %s failed: %v", key, err)
		}
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list returned %d keys; want 3", len(all))
	}

	prefixed, err := store.List(ctx, "100_")
	if err != nil {
		t.Fatalf("prefixed list failed: %v", err)
	}
	if len(prefixed) != 2 {
		t.Fatalf("prefixed list returned %d keys; want 2", len(prefixed))
	}

	if err := store.Delete(ctx, all...); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	remaining, _ := store.List(ctx, "")
	if len(remaining) != 0 {
		t.Fatalf("%d keys remain after bulk delete; want 0", len(remaining))
	}
}
