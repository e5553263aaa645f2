package store

import (
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the migration is not re-applied.
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) == 0 {
		t.Fatal("expected at least one applied migration")
	}
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("migrations not in ascending order: %v", versions)
			break
		}
	}
}

func TestPutGetDelete(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := s.Put(KeyActiveTab, "leads"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(KeyActiveTab)
	if err != nil || got != "leads" {
		t.Errorf("Get = (%q, %v), want leads", got, err)
	}

	if err := s.Delete(KeyActiveTab); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(KeyActiveTab); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestPutLastWriteWins(t *testing.T) {
	s := openTestStore(t)

	s.Put(KeySearchCriteria, "first")
	s.Put(KeySearchCriteria, "second")

	got, err := s.Get(KeySearchCriteria)
	if err != nil || got != "second" {
		t.Errorf("Get = (%q, %v), want second", got, err)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	s := openTestStore(t)

	s.Put(KeySessionCookie, "abc")
	s.Put(KeyZohoCreds, "{}")
	s.Put(KeyActiveTab, "zoho")

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("keys after Clear = %v, want none", keys)
	}
}

func TestKeysSorted(t *testing.T) {
	s := openTestStore(t)

	s.Put("b", "2")
	s.Put("a", "1")
	s.Put("c", "3")

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestJSONHelpers(t *testing.T) {
	s := openTestStore(t)

	type criteria struct {
		JobTitle string `json:"job_title"`
		Limit    int    `json:"limit"`
	}

	in := criteria{JobTitle: "engineer", Limit: 25}
	if err := s.PutJSON(KeySearchCriteria, in); err != nil {
		t.Fatalf("PutJSON: %v", err)
	}

	var out criteria
	if err := s.GetJSON(KeySearchCriteria, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	var missing criteria
	if err := s.GetJSON("nope", &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetJSON(missing) = %v, want ErrNotFound", err)
	}
}
