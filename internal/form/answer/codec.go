package answer

import (
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"bytes"
	"errors"

	"github.com/goccy/go-json"
)

// Encode serializes answers to the persisted text format, a JSON object keyed by field id.
// Absent values are left out.
func Encode(answers shared.AnswerMap) string {
	out := make(shared.AnswerMap, len(answers))
	for id, v := range answers {
		if v.Kind() == shared.KindAbsent {
			continue
		}
		out[id] = v
	}

	data, err := json.Marshal(out)
	if err != nil {
		// every Value kind marshals to a JSON scalar or string array
		return "{}"
	}
	return string(data)
}

// Decode parses persisted answer text. Blank text and JSON null decode to an empty map.
// Any other text that is not an object of strings, booleans or string arrays yields a *ParseError.
func Decode(text string) (shared.AnswerMap, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return shared.AnswerMap{}, nil
	}

	if trimmed[0] != '{' {
		return nil, &ParseError{Text: text, Err: errors.New("answers must be a JSON object")}
	}

	var answers shared.AnswerMap
	if err := json.Unmarshal(trimmed, &answers); err != nil {
		return nil, &ParseError{Text: text, Err: err}
	}

	for id, v := range answers {
		if v.Kind() == shared.KindAbsent {
			delete(answers, id)
		}
	}

	if answers == nil {
		answers = shared.AnswerMap{}
	}
	return answers, nil
}
