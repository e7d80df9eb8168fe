// Package hayaml provides the tagged-union YAML value model every validation
// stage consumes instead of untyped map[string]any trees. Values carry the
// source line/column they were parsed from, and mappings preserve document
// key order so findings come out in a deterministic order.
package hayaml

// Kind discriminates the YAML value union.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the kind name used in validation messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Entry is one key/value pair of a mapping, in document order.
type Entry struct {
	Key   string
	Value *Value
}

// Value is a parsed YAML node. Exactly one of the payload fields is
// meaningful, selected by Kind. Line and Column are 1-based source
// positions (zero for synthesized values).
type Value struct {
	Kind    Kind
	Bool    bool
	Number  float64
	Str     string
	Items   []*Value
	Entries []Entry
	Line    int
	Column  int
}

// Null returns a synthesized null value.
func Null() *Value { return &Value{Kind: KindNull} }

// Str returns a synthesized string value.
func Str(s string) *Value { return &Value{Kind: KindString, Str: s} }

// Num returns a synthesized number value.
func Num(f float64) *Value { return &Value{Kind: KindNumber, Number: f} }

// BoolVal returns a synthesized bool value.
func BoolVal(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }

// Seq returns a synthesized sequence value.
func Seq(items ...*Value) *Value { return &Value{Kind: KindSequence, Items: items} }

// Map returns a synthesized mapping value.
func Map(entries ...Entry) *Value { return &Value{Kind: KindMapping, Entries: entries} }

// IsMapping reports whether v is a non-nil mapping.
func (v *Value) IsMapping() bool { return v != nil && v.Kind == KindMapping }

// IsSequence reports whether v is a non-nil sequence.
func (v *Value) IsSequence() bool { return v != nil && v.Kind == KindSequence }

// IsString reports whether v is a non-nil string.
func (v *Value) IsString() bool { return v != nil && v.Kind == KindString }

// Get looks up a mapping key. The second return is false when v is not a
// mapping or the key is absent.
func (v *Value) Get(key string) (*Value, bool) {
	if !v.IsMapping() {
		return nil, false
	}
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether a mapping key is present.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// GetString returns the string payload of a mapping entry, or "" when the
// key is absent or not a string.
func (v *Value) GetString(key string) string {
	e, ok := v.Get(key)
	if !ok || !e.IsString() {
		return ""
	}
	return e.Str
}

// Set replaces the value for key, or appends a new entry when absent.
// It panics if v is not a mapping; callers construct mappings explicitly.
func (v *Value) Set(key string, val *Value) {
	if v.Kind != KindMapping {
		panic("hayaml: Set on non-mapping value")
	}
	for i, e := range v.Entries {
		if e.Key == key {
			v.Entries[i].Value = val
			return
		}
	}
	v.Entries = append(v.Entries, Entry{Key: key, Value: val})
}

// Delete removes a mapping entry. It is a no-op when the key is absent or v
// is not a mapping.
func (v *Value) Delete(key string) {
	if !v.IsMapping() {
		return
	}
	for i, e := range v.Entries {
		if e.Key == key {
			v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy. Positions are carried over.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{
		Kind:   v.Kind,
		Bool:   v.Bool,
		Number: v.Number,
		Str:    v.Str,
		Line:   v.Line,
		Column: v.Column,
	}
	if v.Items != nil {
		out.Items = make([]*Value, len(v.Items))
		for i, item := range v.Items {
			out.Items[i] = item.Clone()
		}
	}
	if v.Entries != nil {
		out.Entries = make([]Entry, len(v.Entries))
		for i, e := range v.Entries {
			out.Entries[i] = Entry{Key: e.Key, Value: e.Value.Clone()}
		}
	}
	return out
}

// Interface converts v to plain Go values (nil, bool, float64, string,
// []any, map[string]any). Mapping order is lost; intended for JSON output
// and debugging, not validation.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	case KindSequence:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.Entries))
		for _, e := range v.Entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	default:
		return nil
	}
}
