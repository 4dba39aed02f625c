package field

import "slices"

type Type string

const (
	TypeShortText    Type = "short_text"
	TypeLongText     Type = "long_text"
	TypeSingleSelect Type = "single_select"
	TypeMultiSelect  Type = "multi_select"
	TypeSingleChoice Type = "single_choice"
)

var types = []Type{
	TypeShortText,
	TypeLongText,
	TypeSingleSelect,
	TypeMultiSelect,
	TypeSingleChoice,
}

// Types returns every known field type in declaration order.
func Types() []Type {
	return slices.Clone(types)
}

func (t Type) Known() bool {
	return slices.Contains(types, t)
}

// HasOptions reports whether fields of type t carry a mandatory, non-empty options list.
func HasOptions(t Type) bool {
	switch t {
	case TypeSingleSelect, TypeMultiSelect, TypeSingleChoice:
		return true
	default:
		return false
	}
}

// SupportsTextValidation reports whether minLength, maxLength and pattern apply to t.
func SupportsTextValidation(t Type) bool {
	switch t {
	case TypeShortText, TypeLongText:
		return true
	default:
		return false
	}
}

// SupportsPlaceholder reports whether t renders a free-text input that can show a hint.
func SupportsPlaceholder(t Type) bool {
	return SupportsTextValidation(t)
}

type Validation struct {
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

func (v *Validation) IsZero() bool {
	return v == nil || (v.MinLength == nil && v.MaxLength == nil && v.Pattern == "")
}

// Field is one question definition of a schema. ID is the key of its answer in an answer map.
type Field struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	Label       string      `json:"label"`
	Required    bool        `json:"required,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Options     []string    `json:"options,omitempty"`
	Validation  *Validation `json:"validation,omitempty"`
}

// Name is the text used to refer to the field in messages: its label, or its id when unlabeled.
func (f Field) Name() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

// Clone returns a copy of f that shares no slices or pointers with it.
func (f Field) Clone() Field {
	c := f
	if f.Options != nil {
		c.Options = slices.Clone(f.Options)
	}
	if f.Validation != nil {
		v := *f.Validation
		if v.MinLength != nil {
			n := *v.MinLength
			v.MinLength = &n
		}
		if v.MaxLength != nil {
			n := *v.MaxLength
			v.MaxLength = &n
		}
		c.Validation = &v
	}
	return c
}

// Check verifies the structural invariants of a single field.
func (f Field) Check() error {
	if f.ID == "" {
		return ErrInvalidField{FieldID: f.ID, Message: "id cannot be empty"}
	}

	if !f.Type.Known() {
		return ErrInvalidField{FieldID: f.ID, Message: "unsupported type " + string(f.Type)}
	}

	if HasOptions(f.Type) {
		if len(f.Options) == 0 {
			return ErrInvalidField{FieldID: f.ID, Message: "options are required for " + string(f.Type)}
		}
	} else if f.Options != nil {
		return ErrInvalidField{FieldID: f.ID, Message: "options are not allowed for " + string(f.Type)}
	}

	if !SupportsPlaceholder(f.Type) && f.Placeholder != "" {
		return ErrInvalidField{FieldID: f.ID, Message: "placeholder is not allowed for " + string(f.Type)}
	}

	if f.Validation.IsZero() {
		return nil
	}

	if !SupportsTextValidation(f.Type) {
		return ErrInvalidField{FieldID: f.ID, Message: "validation is not allowed for " + string(f.Type)}
	}

	v := f.Validation
	if v.MinLength != nil && *v.MinLength < 0 {
		return ErrInvalidField{FieldID: f.ID, Message: "minLength cannot be negative"}
	}
	if v.MaxLength != nil && *v.MaxLength < 0 {
		return ErrInvalidField{FieldID: f.ID, Message: "maxLength cannot be negative"}
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
		return ErrInvalidField{FieldID: f.ID, Message: "minLength cannot exceed maxLength"}
	}

	return nil
}

// CheckSchema verifies every field and that field ids are unique within the list.
func CheckSchema(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := f.Check(); err != nil {
			return err
		}
		if _, ok := seen[f.ID]; ok {
			return ErrDuplicateFieldID{FieldID: f.ID}
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// IDs returns the set of field ids of a schema.
func IDs(fields []Field) map[string]struct{} {
	ids := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		ids[f.ID] = struct{}{}
	}
	return ids
}
