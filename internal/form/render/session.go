package render

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"maps"
	"slices"
)

// Session is one respondent filling in (or one reader viewing) a form. It owns a working copy
// of the answers and is not safe for concurrent use.
type Session struct {
	controls []Control
	answers  shared.AnswerMap
	errors   map[string]string
	readOnly bool
	patterns *PatternCache
}

// NewSession builds a session over fields. initial is copied; the caller keeps ownership of it.
func NewSession(fields []field.Field, initial shared.AnswerMap, readOnly bool, patterns *PatternCache) *Session {
	controls := make([]Control, len(fields))
	for i, f := range fields {
		controls[i] = NewControl(f.Clone())
	}

	answers := shared.AnswerMap{}
	if initial != nil {
		answers = initial.Clone()
	}

	return &Session{
		controls: controls,
		answers:  answers,
		errors:   make(map[string]string),
		readOnly: readOnly,
		patterns: patterns,
	}
}

func (s *Session) ReadOnly() bool {
	return s.readOnly
}

func (s *Session) Controls() []Control {
	return slices.Clone(s.controls)
}

func (s *Session) Fields() []field.Field {
	fields := make([]field.Field, len(s.controls))
	for i, c := range s.controls {
		fields[i] = c.Field().Clone()
	}
	return fields
}

// Answers returns a copy of the working answers.
func (s *Session) Answers() shared.AnswerMap {
	return s.answers.Clone()
}

// Errors returns a copy of the messages currently shown, keyed by field id.
func (s *Session) Errors() map[string]string {
	return maps.Clone(s.errors)
}

// Set replaces the answer of field id. The field's displayed error, if any, is cleared without
// validating the new value.
func (s *Session) Set(id string, value shared.Value) error {
	if s.readOnly {
		return internal.ErrFormReadOnly
	}

	if list, ok := value.AsList(); ok {
		value = shared.List(list...)
	}
	s.answers[id] = value
	delete(s.errors, id)
	return nil
}

// SetAll applies Set for every entry of answers.
func (s *Session) SetAll(answers shared.AnswerMap) error {
	for id, v := range answers {
		if err := s.Set(id, v); err != nil {
			return err
		}
	}
	return nil
}

// Toggle checks or unchecks option in a multi select answer. Newly checked options go to the
// end of the list, so the list reflects the order of selection.
func (s *Session) Toggle(id, option string, checked bool) error {
	if s.readOnly {
		return internal.ErrFormReadOnly
	}

	current, _ := s.answers.Get(id).AsList()
	idx := slices.Index(current, option)

	switch {
	case checked && idx < 0:
		current = append(current, option)
	case !checked && idx >= 0:
		current = slices.Delete(current, idx, idx+1)
	}

	return s.Set(id, shared.List(current...))
}

// Submit validates every field. When all of them pass, onSuccess is called with a copy of the
// answers and its error is returned. Otherwise the per-field messages are kept for display,
// returned, and onSuccess is not called. A read-only session never submits.
func (s *Session) Submit(onSuccess func(shared.AnswerMap) error) (map[string]string, error) {
	if s.readOnly {
		return nil, internal.ErrFormReadOnly
	}

	fields := make([]field.Field, len(s.controls))
	for i, c := range s.controls {
		fields[i] = c.Field()
	}

	errs := Validate(fields, s.answers, s.patterns)
	s.errors = errs
	if len(errs) > 0 {
		return maps.Clone(errs), nil
	}

	if onSuccess == nil {
		return nil, nil
	}
	return nil, onSuccess(s.answers.Clone())
}

// View returns the render model of the form in its current state.
func (s *Session) View() FormView {
	view := FormView{
		ReadOnly: s.readOnly,
		Fields:   make([]FieldView, len(s.controls)),
	}
	for i, c := range s.controls {
		fv := c.View(s.answers.Get(c.Field().ID))
		fv.Error = s.errors[fv.ID]
		fv.Disabled = s.readOnly
		view.Fields[i] = fv
	}
	return view
}
