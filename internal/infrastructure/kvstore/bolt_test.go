package kvstore

import (
	"path/filepath"
	"testing"
)

func openTestBolt(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBolt(filepath.Join(t.TempDir(), "store.db"), "test")
	if err != nil {
		t.Fatalf("failed to open bolt store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltRoundTrip(t *testing.T) {
	store := openTestBolt(t)

	if err := store.Set("user_u1_task_t1", []byte(`{"id":"t1"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := store.Get("user_u1_task_t1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to exist")
	}
	if string(value) != `{"id":"t1"}` {
		t.Errorf("unexpected value %q", value)
	}

	ok, err := store.Contains("user_u1_task_t1")
	if err != nil || !ok {
		t.Errorf("Contains = %v, %v; want true, nil", ok, err)
	}
}

func TestBoltGetMissing(t *testing.T) {
	store := openTestBolt(t)

	value, found, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found || value != nil {
		t.Errorf("expected absent key, got found=%v value=%q", found, value)
	}
}

func TestBoltDelete(t *testing.T) {
	store := openTestBolt(t)

	if err := store.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := store.Contains("k"); ok {
		t.Error("expected key to be gone after delete")
	}
	// deleting again is a no-op, not an error
	if err := store.Delete("k"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestBoltKeysAndSize(t *testing.T) {
	store := openTestBolt(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(k, []byte(k)); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("len(Keys()) = %d, want 3", len(keys))
	}

	size, err := store.Size()
	if err != nil || size != 3 {
		t.Errorf("Size = %d, %v; want 3, nil", size, err)
	}
}

func TestBoltOverwrite(t *testing.T) {
	store := openTestBolt(t)

	if err := store.Set("k", []byte("old")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("k", []byte("new")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _, err := store.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "new" {
		t.Errorf("value = %q, want %q", value, "new")
	}
}
