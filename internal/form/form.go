// Package form holds the user-entered fields of one dashboard action: text
// and numeric inputs plus file attachments, with required-field validation
// and named snapshots in the durable local store.
package form

import (
	"fmt"
	"strings"
)

// Attachment is a file payload selected for upload.
type Attachment struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Field declares one form field and its default value.
type Field struct {
	Name    string
	Default string
	File    bool // file fields carry an Attachment instead of a string
}

// MissingFieldsError names every required field that is empty, not just the
// first one, so the caller can surface all of them at once.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

type fieldState struct {
	decl Field
	text string
	file *Attachment
}

// Controller owns the ordered field set of one form. All mutation is
// in-memory; only the snapshot operations touch the store.
type Controller struct {
	order  []string
	fields map[string]*fieldState
}

func New(fields ...Field) *Controller {
	c := &Controller{fields: make(map[string]*fieldState, len(fields))}
	for _, f := range fields {
		c.order = append(c.order, f.Name)
		c.fields[f.Name] = &fieldState{decl: f, text: f.Default}
	}
	return c
}

func (c *Controller) state(name string) (*fieldState, error) {
	fs, ok := c.fields[name]
	if !ok {
		return nil, fmt.Errorf("unknown form field %q", name)
	}
	return fs, nil
}

// Set replaces one text field. No cross-field validation happens here.
func (c *Controller) Set(name, value string) error {
	fs, err := c.state(name)
	if err != nil {
		return err
	}
	fs.text = value
	return nil
}

// SetFile attaches (or with nil, detaches) a file to a file field.
func (c *Controller) SetFile(name string, att *Attachment) error {
	fs, err := c.state(name)
	if err != nil {
		return err
	}
	if !fs.decl.File {
		return fmt.Errorf("form field %q does not take a file", name)
	}
	fs.file = att
	return nil
}

// Value returns the current text of a field; unknown names read as empty.
func (c *Controller) Value(name string) string {
	if fs, ok := c.fields[name]; ok {
		return fs.text
	}
	return ""
}

func (c *Controller) File(name string) *Attachment {
	if fs, ok := c.fields[name]; ok {
		return fs.file
	}
	return nil
}

// Names returns the declared field names in order.
func (c *Controller) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Controller) filled(name string) bool {
	fs, ok := c.fields[name]
	if !ok {
		return false
	}
	if fs.decl.File {
		return fs.file != nil && len(fs.file.Data) > 0
	}
	return strings.TrimSpace(fs.text) != ""
}

// ValidateRequired checks that every named field is non-empty. It is called
// immediately before a request is built; on failure no request may be sent.
func (c *Controller) ValidateRequired(names ...string) error {
	var missing []string
	for _, n := range names {
		if !c.filled(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// Reset returns every field to its declared default and drops attachments.
func (c *Controller) Reset() {
	for _, fs := range c.fields {
		fs.text = fs.decl.Default
		fs.file = nil
	}
}

// Snapshot is a saved copy of the text fields. Attachments are deliberately
// not persisted; a file selection does not survive a reload.
type Snapshot map[string]string

// SnapshotStore is the durable key-value surface snapshots live in.
// *store.Store satisfies it.
type SnapshotStore interface {
	PutJSON(key string, v any) error
	GetJSON(key string, v any) error
	Delete(key string) error
}

// SaveSnapshot persists the current text values under key, replacing any
// prior snapshot there (last save wins).
func (c *Controller) SaveSnapshot(s SnapshotStore, key string) error {
	snap := make(Snapshot, len(c.order))
	for _, n := range c.order {
		if !c.fields[n].decl.File {
			snap[n] = c.fields[n].text
		}
	}
	return s.PutJSON(key, snap)
}

// LoadSnapshot restores text values from a saved snapshot. Fields absent
// from the snapshot keep their current value; snapshot keys that no longer
// match a declared field are ignored.
func (c *Controller) LoadSnapshot(s SnapshotStore, key string) error {
	var snap Snapshot
	if err := s.GetJSON(key, &snap); err != nil {
		return err
	}
	for n, v := range snap {
		if fs, ok := c.fields[n]; ok && !fs.decl.File {
			fs.text = v
		}
	}
	return nil
}

// ClearSnapshot removes the snapshot under key, if any.
func ClearSnapshot(s SnapshotStore, key string) error {
	return s.Delete(key)
}
