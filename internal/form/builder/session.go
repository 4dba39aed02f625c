package builder

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"reflect"
)

type Mode string

const (
	ModeStructured Mode = "structured"
	ModeRaw        Mode = "raw"
)

// Session is a single operator's editing session over one schema. It is not safe for
// concurrent use.
//
// When the text a session is opened with cannot be decoded, the session starts in raw mode:
// the text is kept verbatim and field operations are refused until SetRawText succeeds.
type Session struct {
	current  Snapshot
	rawText  string
	parseErr error

	undo []Snapshot
	redo []Snapshot
}

func Open(text string) *Session {
	s := &Session{}
	fields, err := schema.Decode(text)
	if err != nil {
		s.rawText = text
		s.parseErr = err
		return s
	}

	s.current = NewSnapshot(fields)
	return s
}

func OpenFields(fields []field.Field) *Session {
	return &Session{current: NewSnapshot(fields)}
}

func (s *Session) Mode() Mode {
	if s.parseErr != nil {
		return ModeRaw
	}
	return ModeStructured
}

// ParseError returns the decode failure that put the session in raw mode, or nil.
func (s *Session) ParseError() error {
	return s.parseErr
}

func (s *Session) Snapshot() Snapshot {
	return s.current
}

// Text returns what should be persisted: the encoded field list, or the raw text while the
// session is in raw mode.
func (s *Session) Text() string {
	if s.Mode() == ModeRaw {
		return s.rawText
	}
	return schema.Encode(s.current.fields)
}

// SetRawText replaces the schema with hand-edited text. If the text decodes, the session
// returns to structured mode with a fresh history; otherwise it stays in raw mode holding text.
func (s *Session) SetRawText(text string) error {
	fields, err := schema.Decode(text)
	if err != nil {
		s.rawText = text
		s.parseErr = err
		return err
	}

	s.current = NewSnapshot(fields)
	s.rawText = ""
	s.parseErr = nil
	s.undo = nil
	s.redo = nil
	return nil
}

func (s *Session) Apply(op Operation) error {
	switch op.Kind {
	case OpUndo:
		return s.Undo()
	case OpRedo:
		return s.Redo()
	}

	if s.Mode() == ModeRaw {
		return internal.ErrBuilderRawMode
	}

	next, err := op.apply(s.current)
	if err != nil {
		return err
	}

	if reflect.DeepEqual(next.fields, s.current.fields) {
		return nil
	}

	s.undo = append(s.undo, s.current)
	s.redo = nil
	s.current = next
	return nil
}

func (s *Session) CanUndo() bool {
	return len(s.undo) > 0
}

func (s *Session) CanRedo() bool {
	return len(s.redo) > 0
}

func (s *Session) Undo() error {
	if s.Mode() == ModeRaw {
		return internal.ErrBuilderRawMode
	}
	if len(s.undo) == 0 {
		return internal.ErrNothingToUndo
	}

	last := len(s.undo) - 1
	s.redo = append(s.redo, s.current)
	s.current = s.undo[last]
	s.undo = s.undo[:last]
	return nil
}

func (s *Session) Redo() error {
	if s.Mode() == ModeRaw {
		return internal.ErrBuilderRawMode
	}
	if len(s.redo) == 0 {
		return internal.ErrNothingToRedo
	}

	last := len(s.redo) - 1
	s.undo = append(s.undo, s.current)
	s.current = s.redo[last]
	s.redo = s.redo[:last]
	return nil
}
