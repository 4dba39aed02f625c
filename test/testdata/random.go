package testdata

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

func RandomName() string {
	return gofakeit.JobTitle() + " " + gofakeit.Noun()
}

func RandomDescription() string {
	return gofakeit.Phrase()
}

func RandomRespondentRef() string {
	return gofakeit.Username()
}

// RandomFields returns n fields with unique ids, cycling through every known field type.
func RandomFields(n int) []field.Field {
	types := field.Types()
	fields := make([]field.Field, n)
	for i := range fields {
		t := types[i%len(types)]
		f := field.Field{
			ID:       uuid.NewString(),
			Type:     t,
			Label:    gofakeit.Question(),
			Required: gofakeit.Bool(),
		}
		if field.HasOptions(t) {
			count := gofakeit.IntRange(1, 5)
			f.Options = make([]string, count)
			for j := range f.Options {
				f.Options[j] = fmt.Sprintf("%s %d", gofakeit.Word(), j+1)
			}
		} else {
			f.Placeholder = gofakeit.Phrase()
		}
		fields[i] = f
	}
	return fields
}
