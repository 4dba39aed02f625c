package shared

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/goccy/go-json"
)

type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindList
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one answer. Text, select and choice fields hold a string, multi select holds the
// selected options in selection order. Bool only appears in data written by older clients.
type Value struct {
	kind Kind
	str  string
	list []string
	b    bool
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsList returns a copy of the list held by v.
func (v Value) AsList() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// IsEmpty reports whether v counts as "no answer": absent, an empty string or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	case KindBool:
		return false
	default:
		return true
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindList:
		return slices.Equal(v.list, other.list)
	case KindBool:
		return v.b == other.b
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindList:
		return json.Marshal(v.list)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty answer value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid string answer: %w", err)
		}
		*v = String(s)
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("invalid list answer, expected array of strings: %w", err)
		}
		*v = List(items...)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("invalid boolean answer: %w", err)
		}
		*v = Bool(b)
	case 'n':
		if !bytes.Equal(trimmed, []byte("null")) {
			return fmt.Errorf("invalid answer value: %s", trimmed)
		}
		*v = Value{}
	default:
		return fmt.Errorf("unsupported answer value: %s", trimmed)
	}

	return nil
}

// AnswerMap maps a field id to its answer.
type AnswerMap map[string]Value

func (m AnswerMap) Clone() AnswerMap {
	c := make(AnswerMap, len(m))
	for id, v := range m {
		if list, ok := v.AsList(); ok {
			c[id] = List(list...)
			continue
		}
		c[id] = v
	}
	return c
}

func (m AnswerMap) Get(id string) Value {
	if m == nil {
		return Value{}
	}
	return m[id]
}

func (m AnswerMap) Equal(other AnswerMap) bool {
	if len(m) != len(other) {
		return false
	}
	for id, v := range m {
		o, ok := other[id]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}
