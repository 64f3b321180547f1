package history

import (
	"context"
	"testing"
)

func TestDirStoreRoundTrip(t *testing.T) {
	store := NewDirStore(t.TempDir())
	ctx := context.Background()

	if err := store.Put(ctx, "reports/a.json", []byte(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	data, err := store.Get(ctx, "reports/a.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"v":1}` {
		t.Errorf("data = %s", data)
	}
}

func TestDirStoreOverwrite(t *testing.T) {
	store := NewDirStore(t.TempDir())
	ctx := context.Background()

	for _, body := range []string{"first", "second"} {
		if err := store.Put(ctx, "reports/a.json", []byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	data, err := store.Get(ctx, "reports/a.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("data = %s, want the rename to replace the entry", data)
	}
}

func TestDirStoreListSlashKeys(t *testing.T) {
	store := NewDirStore(t.TempDir())
	ctx := context.Background()

	if err := store.Put(ctx, "reports/2025/a.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	keys, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "reports/2025/a.json" {
		t.Errorf("keys = %v, want slash-separated keys relative to the root", keys)
	}
}

func TestDirStoreListMissingPrefix(t *testing.T) {
	store := NewDirStore(t.TempDir())
	keys, err := store.List(context.Background(), "reports/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("keys = %v, want none", keys)
	}
}
