package frontmatter

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindBool
	KindDate
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a tagged frontmatter value: a string, a bool, a calendar date or a
// list of strings. The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	b    bool
	date time.Time
	list []string
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// DateValue returns a date Value. Only the calendar day of t is kept.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ListValue returns a list Value holding a copy of items.
func ListValue(items []string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

func (v Value) Kind() Kind { return v.kind }

// AsString returns the string for KindString values.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsBool returns the bool for KindBool values.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsDate returns the day for KindDate values.
func (v Value) AsDate() (time.Time, bool) {
	return v.date, v.kind == KindDate
}

// AsList returns a copy of the items for KindList values.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// String renders the value as text; dates use YYYY-MM-DD and lists are
// comma separated.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.date.Format(time.DateOnly)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return v.str
	}
}

// Interface returns the Go value handed to templates.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindDate:
		return v.date
	case KindList:
		return slices.Clone(v.list)
	default:
		return v.str
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.date.Equal(o.date)
	case KindList:
		return slices.Equal(v.list, o.list)
	default:
		return v.str == o.str
	}
}

// Metadata is an ordered mapping of frontmatter keys to Values. The zero
// value is an empty mapping ready to use.
type Metadata struct {
	keys []string
	vals map[string]Value
}

// NewMetadata returns an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{vals: map[string]Value{}}
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (m *Metadata) Set(key string, v Value) {
	if m.vals == nil {
		m.vals = map[string]Value{}
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in document order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// String returns the text of key, or def when key is absent.
// Non-string kinds are rendered with Value.String.
func (m *Metadata) String(key, def string) string {
	v, ok := m.Get(key)
	if !ok {
		return def
	}
	return v.String()
}

// Bool returns key as a bool. Bool values are returned as is; strings are
// parsed with strconv.ParseBool. Anything else, or an absent key, yields def.
func (m *Metadata) Bool(key string, def bool) bool {
	v, ok := m.Get(key)
	if !ok {
		return def
	}
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		if b, err := strconv.ParseBool(strings.TrimSpace(v.str)); err == nil {
			return b
		}
	}
	return def
}

// Date returns key as a calendar day. Only KindDate values qualify.
func (m *Metadata) Date(key string) (time.Time, bool) {
	v, ok := m.Get(key)
	if !ok {
		return time.Time{}, false
	}
	return v.AsDate()
}

// Strings returns key as a list. A single non-empty string becomes a
// one-element list; other kinds and absent keys return nil.
func (m *Metadata) Strings(key string) []string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	switch v.kind {
	case KindList:
		return slices.Clone(v.list)
	case KindString:
		if v.str == "" {
			return nil
		}
		return []string{v.str}
	}
	return nil
}

// Map returns a plain map for template pass-through.
func (m *Metadata) Map() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out[k] = m.vals[k].Interface()
	}
	return out
}

// Equal reports whether both mappings hold the same keys, in the same order,
// with equal values.
func (m *Metadata) Equal(o *Metadata) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if o.keys[i] != k {
			return false
		}
		if !m.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}
