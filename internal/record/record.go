// Package record models the semi-structured result rows returned by the
// backend. Field sets vary per endpoint and per response, so a row is an
// ordered map of name to type-tagged value rather than a fixed struct.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the payload carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList    // list of scalar values
	KindRecords // list of nested records
)

// Value is one field of a Record: a scalar, a list of scalars, or a list of
// nested records (e.g. the discovered emails attached to a lead).
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	recs []Record
}

func Null() Value                { return Value{kind: KindNull} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Number(n float64) Value     { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func List(vs ...Value) Value     { return Value{kind: KindList, list: vs} }
func Records(rs ...Record) Value { return Value{kind: KindRecords, recs: rs} }

func (v Value) Kind() Kind           { return v.kind }
func (v Value) Num() float64         { return v.num }
func (v Value) IsTrue() bool         { return v.b }
func (v Value) Items() []Value       { return v.list }
func (v Value) Subrecords() []Record { return v.recs }

// IsEmpty reports whether the value carries nothing presentable: null, an
// empty string, or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	case KindRecords:
		return len(v.recs) == 0
	}
	return false
}

// Display renders the value as a single table cell. Lists join with "; ".
// Nested records render their first field only; use Cell with a Sub column
// to project a specific sub-field instead.
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Display()
		}
		return strings.Join(parts, "; ")
	case KindRecords:
		parts := make([]string, 0, len(v.recs))
		for _, r := range v.recs {
			if first := r.Fields(); len(first) > 0 {
				fv, _ := r.Get(first[0])
				parts = append(parts, fv.Display())
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// UnmarshalJSON decodes any JSON value into the matching Kind. Arrays of
// objects become KindRecords; other arrays become KindList.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("empty value")
	}
	switch trimmed[0] {
	case 'n':
		*v = Null()
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '{':
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*v = Records(r)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if allObjects(raw) {
			recs := make([]Record, len(raw))
			for i, m := range raw {
				if err := json.Unmarshal(m, &recs[i]); err != nil {
					return err
				}
			}
			*v = Records(recs...)
			return nil
		}
		items := make([]Value, len(raw))
		for i, m := range raw {
			if err := json.Unmarshal(m, &items[i]); err != nil {
				return err
			}
		}
		*v = List(items...)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Number(n)
		return nil
	}
}

func allObjects(raw []json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	for _, m := range raw {
		t := strings.TrimSpace(string(m))
		if t == "" || t[0] != '{' {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the value back to its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	case KindRecords:
		return json.Marshal(v.recs)
	}
	return []byte("null"), nil
}

// Record is an ordered set of named values. Field order follows the JSON the
// backend sent, which is what the table and export projections rely on.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

func New() Record {
	return Record{fields: orderedmap.New[string, Value]()}
}

func (r *Record) ensure() {
	if r.fields == nil {
		r.fields = orderedmap.New[string, Value]()
	}
}

// Set adds or replaces a field, keeping insertion order for new names.
func (r *Record) Set(name string, v Value) {
	r.ensure()
	r.fields.Set(name, v)
}

func (r Record) Get(name string) (Value, bool) {
	if r.fields == nil {
		return Value{}, false
	}
	return r.fields.Get(name)
}

// Fields returns the field names in order.
func (r Record) Fields() []string {
	if r.fields == nil {
		return nil
	}
	names := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

func (r *Record) UnmarshalJSON(data []byte) error {
	r.ensure()
	return r.fields.UnmarshalJSON(data)
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// Sentinel is rendered for projected fields the record does not carry, so a
// missing value is never confused with an empty one.
const Sentinel = "N/A"

// Column describes one projected field. Sub selects a sub-field to join when
// the projected value is a list of nested records ("all_emails" / "email").
type Column struct {
	Header string
	Field  string
	Sub    string
}

// Cell resolves a column against a record. The second return is false when
// the record does not carry the field at all, in which case the cell text is
// the Sentinel placeholder.
func Cell(r Record, c Column) (string, bool) {
	v, ok := r.Get(c.Field)
	if !ok || v.Kind() == KindNull {
		return Sentinel, false
	}
	if c.Sub != "" && v.Kind() == KindRecords {
		parts := make([]string, 0, len(v.Subrecords()))
		for _, sub := range v.Subrecords() {
			if sv, ok := sub.Get(c.Sub); ok && !sv.IsEmpty() {
				parts = append(parts, sv.Display())
			}
		}
		return strings.Join(parts, "; "), true
	}
	return v.Display(), true
}
