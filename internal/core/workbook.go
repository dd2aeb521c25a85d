package core

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	templateSheet = "Candidato"
	exportSheet   = "Candidates"
)

// TemplateWorkbook returns an xlsx file holding the expected header and one
// example row. Uploading it unchanged yields the example record.
func (s *Service) TemplateWorkbook() ([]byte, error) {
	format := s.ExpectedFormat()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(format.Headers))
	for i, h := range format.Headers {
		header[i] = h
	}
	example := []any{format.Example[0], 5, true}

	if err := writeRows(f, templateSheet, header, example); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(templateSheet, "A", "C", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	return toBytes(f)
}

// ExportWorkbook writes every candidate matching p (ignoring paging) to an
// xlsx file.
func (s *Service) ExportWorkbook(ctx context.Context, p ListParams) ([]byte, error) {
	p.Page, p.Limit = 0, 0
	q, _, _, err := ValidateList(p)
	if err != nil {
		return nil, err
	}
	q.Offset, q.Limit = 0, 0

	rows, _, err := s.store.ListCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	data := make([][]any, 0, len(rows)+1)
	data = append(data, []any{"Name", "Surname", "Seniority", "Años Experiencia", "Disponibilidad", "Created"})
	for _, c := range rows {
		data = append(data, []any{
			c.Name,
			c.Surname,
			string(c.Tier),
			c.YearsExperience,
			c.Availability,
			c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	if err := writeRows(f, exportSheet, data...); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "A", "F", 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	return toBytes(f)
}

// writeRows writes rows starting at A1 and bolds the first one.
func writeRows(f *excelize.File, sheet string, rows ...[]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, bold)
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
