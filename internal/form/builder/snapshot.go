package builder

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"fmt"

	"github.com/google/uuid"
)

const (
	DefaultLabel       = "Nova pergunta"
	DefaultPlaceholder = "Digite sua resposta"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// generateID is swapped in tests to force collisions.
var generateID = uuid.NewString

// Patch holds the members to overwrite in UpdateField. Nil members are left untouched. When
// Type changes, members the new type does not support are dropped and an options type without
// options gets the two default ones, as AddField would give it.
type Patch struct {
	ID          *string           `json:"id,omitempty" validate:"omitempty,field_id"`
	Type        *field.Type       `json:"type,omitempty" validate:"omitempty,field_type"`
	Label       *string           `json:"label,omitempty"`
	Required    *bool             `json:"required,omitempty"`
	Placeholder *string           `json:"placeholder,omitempty"`
	Options     []string          `json:"options,omitempty"`
	Validation  *field.Validation `json:"validation,omitempty"`
}

func (p Patch) apply(f field.Field) field.Field {
	previous := f.Type
	if p.ID != nil {
		f.ID = *p.ID
	}
	if p.Type != nil {
		f.Type = *p.Type
	}
	if p.Label != nil {
		f.Label = *p.Label
	}
	if p.Required != nil {
		f.Required = *p.Required
	}
	if p.Placeholder != nil {
		f.Placeholder = *p.Placeholder
	}
	if p.Options != nil {
		f.Options = append([]string{}, p.Options...)
	}
	if p.Validation != nil {
		if p.Validation.IsZero() {
			f.Validation = nil
		} else {
			f.Validation = field.Field{Validation: p.Validation}.Clone().Validation
		}
	}
	if f.Type != previous {
		f = fitType(f)
	}
	return f
}

func fitType(f field.Field) field.Field {
	if !field.HasOptions(f.Type) {
		f.Options = nil
	} else if len(f.Options) == 0 {
		f.Options = []string{optionLabel(0), optionLabel(1)}
	}
	if !field.SupportsPlaceholder(f.Type) {
		f.Placeholder = ""
	}
	if !field.SupportsTextValidation(f.Type) {
		f.Validation = nil
	}
	return f
}

// Snapshot is an immutable ordered field list. Every operation returns a new Snapshot and
// leaves the receiver untouched, so older snapshots can be kept around as history.
type Snapshot struct {
	fields []field.Field
}

func NewSnapshot(fields []field.Field) Snapshot {
	return Snapshot{fields: cloneFields(fields)}
}

// Fields returns a copy of the ordered field list.
func (s Snapshot) Fields() []field.Field {
	return cloneFields(s.fields)
}

func (s Snapshot) Len() int {
	return len(s.fields)
}

func (s Snapshot) Field(index int) (field.Field, bool) {
	if !s.inRange(index) {
		return field.Field{}, false
	}
	return s.fields[index].Clone(), true
}

// AddField appends a new field of type t with a fresh id and default label. Option types get
// two default options and text types a default placeholder.
func (s Snapshot) AddField(t field.Type) (Snapshot, error) {
	if !t.Known() {
		return s, field.ErrUnsupportedFieldType{Type: t}
	}

	f := field.Field{
		ID:    s.uniqueID(),
		Type:  t,
		Label: DefaultLabel,
	}
	if field.HasOptions(t) {
		f.Options = []string{optionLabel(0), optionLabel(1)}
	}
	if field.SupportsPlaceholder(t) {
		f.Placeholder = DefaultPlaceholder
	}

	next := s.Fields()
	next = append(next, f)
	return Snapshot{fields: next}, nil
}

func (s Snapshot) UpdateField(index int, patch Patch) (Snapshot, error) {
	if !s.inRange(index) {
		return s, fmt.Errorf("update field %d of %d: %w", index, len(s.fields), internal.ErrFieldIndexOutOfRange)
	}

	next := s.Fields()
	next[index] = patch.apply(next[index])
	return Snapshot{fields: next}, nil
}

func (s Snapshot) DeleteField(index int) (Snapshot, error) {
	if !s.inRange(index) {
		return s, fmt.Errorf("delete field %d of %d: %w", index, len(s.fields), internal.ErrFieldIndexOutOfRange)
	}

	next := make([]field.Field, 0, len(s.fields)-1)
	for i, f := range s.fields {
		if i == index {
			continue
		}
		next = append(next, f.Clone())
	}
	return Snapshot{fields: next}, nil
}

// MoveField swaps the field at index with its neighbour. Moving the first field up, the last
// field down, or an index that does not exist leaves the snapshot unchanged.
func (s Snapshot) MoveField(index int, direction Direction) Snapshot {
	if !s.inRange(index) {
		return s
	}

	var target int
	switch direction {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return s
	}
	if !s.inRange(target) {
		return s
	}

	next := s.Fields()
	next[index], next[target] = next[target], next[index]
	return Snapshot{fields: next}
}

// AddOption appends "Opção {n+1}" to the options of the field at index. Fields without an
// options list are left alone.
func (s Snapshot) AddOption(index int) Snapshot {
	if !s.inRange(index) || s.fields[index].Options == nil {
		return s
	}

	next := s.Fields()
	options := next[index].Options
	next[index].Options = append(options, optionLabel(len(options)))
	return Snapshot{fields: next}
}

// RemoveOption drops one option. A field always keeps at least one option.
func (s Snapshot) RemoveOption(index, optionIndex int) Snapshot {
	if !s.inRange(index) {
		return s
	}
	options := s.fields[index].Options
	if optionIndex < 0 || optionIndex >= len(options) || len(options) <= 1 {
		return s
	}

	next := s.Fields()
	next[index].Options = append(next[index].Options[:optionIndex], next[index].Options[optionIndex+1:]...)
	return Snapshot{fields: next}
}

func (s Snapshot) UpdateOption(index, optionIndex int, value string) Snapshot {
	if !s.inRange(index) {
		return s
	}
	if optionIndex < 0 || optionIndex >= len(s.fields[index].Options) {
		return s
	}

	next := s.Fields()
	next[index].Options[optionIndex] = value
	return Snapshot{fields: next}
}

func (s Snapshot) inRange(index int) bool {
	return index >= 0 && index < len(s.fields)
}

func (s Snapshot) uniqueID() string {
	taken := field.IDs(s.fields)
	for {
		id := generateID()
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

func optionLabel(n int) string {
	return fmt.Sprintf("Opção %d", n+1)
}

func cloneFields(fields []field.Field) []field.Field {
	c := make([]field.Field, len(fields))
	for i, f := range fields {
		c[i] = f.Clone()
	}
	return c
}
