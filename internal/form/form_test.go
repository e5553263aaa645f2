package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func newTestForm() *Controller {
	return New(
		Field{Name: "job_title"},
		Field{Name: "location"},
		Field{Name: "lead_limit", Default: "5"},
		Field{Name: "upload", File: true},
	)
}

func TestDefaults(t *testing.T) {
	f := newTestForm()
	if got := f.Value("lead_limit"); got != "5" {
		t.Errorf("lead_limit default = %q, want 5", got)
	}
	if got := f.Value("job_title"); got != "" {
		t.Errorf("job_title default = %q, want empty", got)
	}
}

func TestValidateRequiredListsEveryMissingField(t *testing.T) {
	f := newTestForm()
	f.Set("location", "Berlin")

	err := f.ValidateRequired("job_title", "location", "upload")
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}

	want := []string{"job_title", "upload"}
	if len(missing.Fields) != len(want) {
		t.Fatalf("missing fields = %v, want %v", missing.Fields, want)
	}
	for i := range want {
		if missing.Fields[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, missing.Fields[i], want[i])
		}
	}
}

func TestValidateRequiredWhitespaceIsEmpty(t *testing.T) {
	f := newTestForm()
	f.Set("job_title", "   ")
	if err := f.ValidateRequired("job_title"); err == nil {
		t.Error("whitespace-only value passed required validation")
	}
}

func TestValidateRequiredPasses(t *testing.T) {
	f := newTestForm()
	f.Set("job_title", "engineer")
	f.SetFile("upload", &Attachment{Name: "a.csv", Data: []byte("x")})
	if err := f.ValidateRequired("job_title", "upload"); err != nil {
		t.Errorf("ValidateRequired: %v", err)
	}
}

func TestSetUnknownField(t *testing.T) {
	f := newTestForm()
	if err := f.Set("nope", "x"); err == nil {
		t.Error("Set on unknown field succeeded")
	}
	if err := f.SetFile("job_title", &Attachment{}); err == nil {
		t.Error("SetFile on text field succeeded")
	}
}

func TestReset(t *testing.T) {
	f := newTestForm()
	f.Set("job_title", "engineer")
	f.Set("lead_limit", "50")
	f.SetFile("upload", &Attachment{Name: "a.csv", Data: []byte("x")})

	f.Reset()

	if got := f.Value("job_title"); got != "" {
		t.Errorf("job_title after reset = %q", got)
	}
	if got := f.Value("lead_limit"); got != "5" {
		t.Errorf("lead_limit after reset = %q, want default 5", got)
	}
	if f.File("upload") != nil {
		t.Error("attachment survived reset")
	}
}

// memStore is an in-memory SnapshotStore.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) PutJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memStore) GetJSON(key string, v any) error {
	b, ok := m.data[key]
	if !ok {
		return fmt.Errorf("key %q not found", key)
	}
	return json.Unmarshal(b, v)
}

func (m *memStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newMemStore()

	f := newTestForm()
	f.Set("job_title", "engineer")
	f.Set("location", "Berlin")
	f.SetFile("upload", &Attachment{Name: "a.csv", Data: []byte("x")})
	if err := f.SaveSnapshot(s, "criteria"); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	g := newTestForm()
	if err := g.LoadSnapshot(s, "criteria"); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if g.Value("job_title") != "engineer" || g.Value("location") != "Berlin" {
		t.Errorf("restored values = %q/%q", g.Value("job_title"), g.Value("location"))
	}
	if g.File("upload") != nil {
		t.Error("attachment was persisted in snapshot")
	}
}

func TestSnapshotLastWriteWins(t *testing.T) {
	s := newMemStore()

	f := newTestForm()
	f.Set("job_title", "first")
	f.SaveSnapshot(s, "criteria")
	f.Set("job_title", "second")
	f.SaveSnapshot(s, "criteria")

	g := newTestForm()
	if err := g.LoadSnapshot(s, "criteria"); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got := g.Value("job_title"); got != "second" {
		t.Errorf("job_title = %q, want second", got)
	}
}

func TestClearSnapshot(t *testing.T) {
	s := newMemStore()

	f := newTestForm()
	f.Set("job_title", "engineer")
	f.SaveSnapshot(s, "criteria")

	if err := ClearSnapshot(s, "criteria"); err != nil {
		t.Fatalf("ClearSnapshot: %v", err)
	}
	g := newTestForm()
	if err := g.LoadSnapshot(s, "criteria"); err == nil {
		t.Error("LoadSnapshot succeeded after clear")
	}
}
