package index

import (
	"context"
	"testing"
)

func newTestStorage(t *testing.T) *BadgerStorage {
	t.Helper()
	opts := DefaultBadgerOptions("")
	opts.InMemory = true

	storage, err := NewBadgerStorage(opts)
	if err != nil {
		t.Fatalf("NewBadgerStorage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestBadgerStorageBasicOperations(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	key := []byte(PrefixParseTree + "internal/model/model.go")
	value := []byte("gob-encoded-symbol-tree")

	if exists, err := storage.Has(ctx, key); err != nil || exists {
		t.Fatalf("Has on an unset key = %v, %v, want false, nil", exists, err)
	}

	if _, err := storage.Get(ctx, key); err != ErrKeyNotFound {
		t.Fatalf("Get on an unset key = %v, want ErrKeyNotFound", err)
	}

	if err := storage.Set(ctx, key, value); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := storage.Get(ctx, key)
	if err != nil || string(got) != string(value) {
		t.Fatalf("Get after Set = %q, %v, want %q, nil", got, err, value)
	}

	if err := storage.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if exists, _ := storage.Has(ctx, key); exists {
		t.Error("key should be gone after Delete")
	}
}

func TestBadgerStorageBatch(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	batch := storage.Batch()
	for i := 0; i < 5; i++ {
		key := []byte(PrefixParseTree + string(rune('a'+i)) + ".go")
		batch.Set(key, []byte("tree"))
	}
	if batch.Size() != 5 {
		t.Fatalf("batch.Size() = %d, want 5", batch.Size())
	}

	if err := storage.WriteBatch(ctx, batch); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}

	for i := 0; i < 5; i++ {
		key := []byte(PrefixParseTree + string(rune('a'+i)) + ".go")
		if _, err := storage.Get(ctx, key); err != nil {
			t.Errorf("Get(%s) after WriteBatch: %v", key, err)
		}
	}

	batch.Clear()
	if batch.Size() != 0 {
		t.Errorf("batch.Size() after Clear = %d, want 0", batch.Size())
	}
}

func TestBadgerStorageScanByPrefix(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	entries := map[string]string{
		PrefixParseTree + "a.go": "tree-a",
		PrefixParseTree + "b.go": "tree-b",
		"sym:unrelated":          "not-a-parse-tree",
	}
	for k, v := range entries {
		if err := storage.Set(ctx, []byte(k), []byte(v)); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	iter := storage.Scan(ctx, []byte(PrefixParseTree), ScanOptions{})
	defer iter.Close()

	found := make(map[string]string)
	for iter.Next() {
		found[string(iter.Key())] = string(iter.Value())
	}
	if err := iter.Error(); err != nil {
		t.Fatalf("scan iterator error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("scan under %q found %d entries, want 2: %v", PrefixParseTree, len(found), found)
	}
	if found[PrefixParseTree+"a.go"] != "tree-a" || found[PrefixParseTree+"b.go"] != "tree-b" {
		t.Errorf("scan results = %v, want the two parse: entries only", found)
	}
}

func TestBadgerStorageTransaction(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	key1 := []byte(PrefixParseTree + "one.go")
	key2 := []byte(PrefixParseTree + "two.go")

	err := storage.Transaction(ctx, func(txn Txn) error {
		if err := txn.Set(key1, []byte("tree-one")); err != nil {
			return err
		}
		return txn.Set(key2, []byte("tree-two"))
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	v1, err := storage.Get(ctx, key1)
	if err != nil || string(v1) != "tree-one" {
		t.Errorf("key1 after transaction = %q, %v", v1, err)
	}
	v2, err := storage.Get(ctx, key2)
	if err != nil || string(v2) != "tree-two" {
		t.Errorf("key2 after transaction = %q, %v", v2, err)
	}
}
