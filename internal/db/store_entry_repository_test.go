package db

import (
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func newTestRepository(t *testing.T) *StoreEntryRepository {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "selene-store.db")
	database := openSQLiteForTest(t, databasePath)
	return NewStoreEntryRepository(database)
}

func TestStoreEntrySetGetRoundTrip(t *testing.T) {
	repository := newTestRepository(t)

	if err := repository.Set("enhanced_pain_tracker_records", `[{"id":"a"}]`); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, found, err := repository.Get("enhanced_pain_tracker_records")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatal("expected key to exist")
	}
	if value != `[{"id":"a"}]` {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestStoreEntryGetMissingKey(t *testing.T) {
	repository := newTestRepository(t)

	value, found, err := repository.Get("never_written")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found || value != "" {
		t.Fatalf("expected miss, got %q found=%v", value, found)
	}
}

func TestStoreEntrySetOverwritesExistingValue(t *testing.T) {
	repository := newTestRepository(t)

	if err := repository.Set("key", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repository.Set("key", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, _, err := repository.Get("key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "second" {
		t.Fatalf("expected overwrite, got %q", value)
	}
}

func TestStoreEntrySetManyWritesAllEntries(t *testing.T) {
	repository := newTestRepository(t)

	entries := map[string]string{
		"enhanced_pain_tracker_records":        "[]",
		"enhanced_pain_tracker_preferences":    "{}",
		"enhanced_pain_tracker_schema_version": "1",
		"enhanced_pain_tracker_metadata":       "{}",
	}
	if err := repository.SetMany(entries); err != nil {
		t.Fatalf("set many: %v", err)
	}

	for key, expected := range entries {
		value, found, err := repository.Get(key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if !found || value != expected {
			t.Fatalf("key %s: got %q found=%v", key, value, found)
		}
	}
}

func TestStoreEntryDelete(t *testing.T) {
	repository := newTestRepository(t)

	if err := repository.Set("key", "value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repository.Delete("key"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, err := repository.Get("key"); err != nil || found {
		t.Fatalf("expected key gone, found=%v err=%v", found, err)
	}

	// Deleting an absent key is not an error.
	if err := repository.Delete("key"); err != nil {
		t.Fatalf("delete absent key: %v", err)
	}
}

func TestStoreEntryKeysEscapesLikeWildcards(t *testing.T) {
	repository := newTestRepository(t)

	seeded := map[string]string{
		"pain_tracker_backup_2024-01-01T00:00:00.000Z": "{}",
		"pain_tracker_backup_2024-01-02T00:00:00.000Z": "{}",
		"painXtrackerXbackupX2024":                     "{}",
		"enhanced_pain_tracker_records":                "[]",
	}
	for key, value := range seeded {
		if err := repository.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	keys, err := repository.Keys("pain_tracker_backup_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	sort.Strings(keys)

	expected := []string{
		"pain_tracker_backup_2024-01-01T00:00:00.000Z",
		"pain_tracker_backup_2024-01-02T00:00:00.000Z",
	}
	if !reflect.DeepEqual(keys, expected) {
		t.Fatalf("underscores must match literally: got %v", keys)
	}
}

func TestStoreEntryTotalSize(t *testing.T) {
	repository := newTestRepository(t)

	if size, err := repository.TotalSize(); err != nil || size != 0 {
		t.Fatalf("empty store size: %d, %v", size, err)
	}

	if err := repository.Set("a", "12345"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repository.Set("b", "123"); err != nil {
		t.Fatalf("set: %v", err)
	}

	size, err := repository.TotalSize()
	if err != nil {
		t.Fatalf("total size: %v", err)
	}
	if size != 8 {
		t.Fatalf("expected 8 bytes, got %d", size)
	}
}
