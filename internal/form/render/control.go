package render

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
)

type ControlKind string

const (
	ControlTextInput     ControlKind = "text_input"
	ControlTextArea      ControlKind = "text_area"
	ControlSelect        ControlKind = "select"
	ControlCheckboxGroup ControlKind = "checkbox_group"
	ControlRadioGroup    ControlKind = "radio_group"
	ControlNone          ControlKind = "none"
)

// Control is the presentation behaviour of one field, chosen from its type alone.
type Control interface {
	Field() field.Field
	Kind() ControlKind
	View(value shared.Value) FieldView
}

// NewControl selects the control for f. Unrecognised types get an Unknown control that renders
// nothing, so one bad field does not take the rest of the form down with it.
func NewControl(f field.Field) Control {
	switch f.Type {
	case field.TypeShortText:
		return ShortText{field: f}
	case field.TypeLongText:
		return LongText{field: f}
	case field.TypeSingleSelect:
		return SingleSelect{field: f}
	case field.TypeMultiSelect:
		return MultiSelect{field: f}
	case field.TypeSingleChoice:
		return SingleChoice{field: f}
	default:
		return Unknown{field: f}
	}
}

type ShortText struct {
	field field.Field
}

func (c ShortText) Field() field.Field { return c.field }

func (c ShortText) Kind() ControlKind { return ControlTextInput }

func (c ShortText) View(value shared.Value) FieldView {
	v := baseView(c.field, c.Kind())
	v.Placeholder = c.field.Placeholder
	v.Text, _ = value.AsString()
	if c.field.Validation != nil && c.field.Validation.MaxLength != nil {
		v.MaxLength = *c.field.Validation.MaxLength
	}
	return v
}

type LongText struct {
	field field.Field
}

func (c LongText) Field() field.Field { return c.field }

func (c LongText) Kind() ControlKind { return ControlTextArea }

func (c LongText) View(value shared.Value) FieldView {
	v := baseView(c.field, c.Kind())
	v.Placeholder = c.field.Placeholder
	v.Text, _ = value.AsString()
	if c.field.Validation != nil && c.field.Validation.MaxLength != nil {
		v.MaxLength = *c.field.Validation.MaxLength
	}
	return v
}

type SingleSelect struct {
	field field.Field
}

func (c SingleSelect) Field() field.Field { return c.field }

func (c SingleSelect) Kind() ControlKind { return ControlSelect }

func (c SingleSelect) View(value shared.Value) FieldView {
	v := baseView(c.field, c.Kind())
	selected, _ := value.AsString()
	v.Options = singleOptions(c.field.Options, selected)
	if selected != "" {
		v.Selected = []string{selected}
	}
	return v
}

type SingleChoice struct {
	field field.Field
}

func (c SingleChoice) Field() field.Field { return c.field }

func (c SingleChoice) Kind() ControlKind { return ControlRadioGroup }

func (c SingleChoice) View(value shared.Value) FieldView {
	v := baseView(c.field, c.Kind())
	selected, _ := value.AsString()
	v.Options = singleOptions(c.field.Options, selected)
	if selected != "" {
		v.Selected = []string{selected}
	}
	return v
}

type MultiSelect struct {
	field field.Field
}

func (c MultiSelect) Field() field.Field { return c.field }

func (c MultiSelect) Kind() ControlKind { return ControlCheckboxGroup }

// View lists options in declaration order; Selected keeps the order in which they were picked.
func (c MultiSelect) View(value shared.Value) FieldView {
	v := baseView(c.field, c.Kind())
	selected, _ := value.AsList()

	checked := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		checked[s] = struct{}{}
	}

	v.Options = make([]OptionView, len(c.field.Options))
	for i, o := range c.field.Options {
		_, ok := checked[o]
		v.Options[i] = OptionView{Value: o, Selected: ok}
	}
	v.Selected = selected
	return v
}

type Unknown struct {
	field field.Field
}

func (c Unknown) Field() field.Field { return c.field }

func (c Unknown) Kind() ControlKind { return ControlNone }

func (c Unknown) View(shared.Value) FieldView {
	return baseView(c.field, c.Kind())
}

func baseView(f field.Field, kind ControlKind) FieldView {
	return FieldView{
		ID:       f.ID,
		Label:    f.Label,
		Control:  kind,
		Required: f.Required,
	}
}

func singleOptions(options []string, selected string) []OptionView {
	out := make([]OptionView, len(options))
	for i, o := range options {
		out[i] = OptionView{Value: o, Selected: o == selected}
	}
	return out
}
