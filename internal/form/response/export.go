package response

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const DefaultSheetName = "Respostas"

var exportHeader = []string{"Resposta", "Respondente", "Enviado em"}

// Export writes responses as an .xlsx workbook with a single sheet. Each field of fields gets a
// column after the fixed response columns. Unreadable responses carry Unreadable in their first
// answer column.
func Export(w io.Writer, fields []field.Field, responses []Response, sheetName string) error {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	book := excelize.NewFile()
	defer func() {
		_ = book.Close()
	}()

	if err := book.SetSheetName(book.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := book.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}

	header := make([]interface{}, 0, len(exportHeader)+len(fields))
	for _, h := range exportHeader {
		header = append(header, h)
	}
	for _, f := range fields {
		header = append(header, f.Name())
	}
	if err := writeRow(sw, 1, header); err != nil {
		return err
	}

	for i, r := range responses {
		row := make([]interface{}, 0, len(header))
		row = append(row, r.ID.String(), r.RespondentRef, r.SubmittedAt.Time.UTC().Format(time.RFC3339))

		report := View(r, fields)
		if report.Unreadable {
			row = append(row, Unreadable)
		} else {
			for _, cell := range report.Rows {
				row = append(row, cell.Value)
			}
		}

		if err := writeRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(sw *excelize.StreamWriter, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
