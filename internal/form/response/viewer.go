package response

import (
	"NYCU-SDC/questionnaire-backend/internal/form/answer"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"strings"
)

const (
	NotAnswered   = "Não respondido"
	Yes           = "Sim"
	No            = "Não"
	Unreadable    = "Resposta ilegível"
	ListSeparator = ", "
)

type SchemaSource string

const (
	SchemaSourceCurrent  SchemaSource = "current"
	SchemaSourceSnapshot SchemaSource = "snapshot"
)

type Row struct {
	FieldID  string `json:"fieldId"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Answered bool   `json:"answered"`
}

// Report is a response rendered against a field list, ready for display.
type Report struct {
	ResponseID    string       `json:"responseId"`
	SchemaID      string       `json:"schemaId"`
	RespondentRef string       `json:"respondentRef"`
	SchemaSource  SchemaSource `json:"schemaSource,omitempty"`
	Unreadable    bool         `json:"unreadable"`
	Error         string       `json:"error,omitempty"`
	Rows          []Row        `json:"rows"`
}

// View renders r against fields: one row per field, in field order. Answers to fields that are
// not in fields are left out. When the stored answers cannot be decoded the report is marked
// unreadable and has no rows. Neither argument is modified.
func View(r Response, fields []field.Field) Report {
	report := Report{
		ResponseID:    r.ID.String(),
		SchemaID:      r.SchemaID.String(),
		RespondentRef: r.RespondentRef,
		Rows:          []Row{},
	}

	answers, err := answer.Decode(r.Answers)
	if err != nil {
		report.Unreadable = true
		report.Error = err.Error()
		return report
	}

	report.Rows = make([]Row, len(fields))
	for i, f := range fields {
		value, answered := FormatValue(answers.Get(f.ID))
		report.Rows[i] = Row{
			FieldID:  f.ID,
			Label:    f.Name(),
			Value:    value,
			Answered: answered,
		}
	}
	return report
}

// FormatValue turns an answer into display text. Absent values, empty strings and empty lists
// read as not answered.
func FormatValue(v shared.Value) (string, bool) {
	if v.IsEmpty() {
		return NotAnswered, false
	}

	switch v.Kind() {
	case shared.KindString:
		s, _ := v.AsString()
		return s, true
	case shared.KindList:
		items, _ := v.AsList()
		return strings.Join(items, ListSeparator), true
	case shared.KindBool:
		b, _ := v.AsBool()
		if b {
			return Yes, true
		}
		return No, true
	default:
		return NotAnswered, false
	}
}
