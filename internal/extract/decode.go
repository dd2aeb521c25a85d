package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var errNoSheets = errors.New("workbook contains no sheets")

// maxXMLPartSize is the largest worksheet part excelize keeps in memory
// before spilling to a temp file.
const maxXMLPartSize = 16 << 20

// Decode reads the first sheet of an xlsx workbook into a Grid.
//
// Cells keep the type the workbook stored them with: booleans become Bool,
// numeric cells become Number (using the raw stored value, not its display
// format) and everything else becomes Text. Empty cells are null and blank
// rows are dropped.
func Decode(data []byte) (Grid, error) {
	return decode(data, 0)
}

// decode is Decode with a cap on the workbook's total uncompressed size.
// A limit of zero keeps the excelize default.
func decode(data []byte, unzipLimit int64) (Grid, error) {
	var opts []excelize.Options
	if unzipLimit > 0 {
		opts = append(opts, excelize.Options{
			UnzipSizeLimit:    unzipLimit,
			UnzipXMLSizeLimit: min(unzipLimit, maxXMLPartSize),
		})
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Err: errNoSheets}
	}
	sheet := sheets[0]

	values, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}

	rows := make([]Row, len(values))
	for r, line := range values {
		row := make(Row, len(line))
		for c, v := range line {
			if strings.TrimSpace(v) == "" {
				continue
			}
			cell, err := typedCell(f, sheet, c+1, r+1, v)
			if err != nil {
				return nil, &DecodeError{Err: err}
			}
			row[c] = cell
		}
		rows[r] = row
	}

	return NewGrid(rows...), nil
}

// typedCell converts the display value of the cell at (col, row), both
// one-based, into a Cell using the type recorded in the sheet.
func typedCell(f *excelize.File, sheet string, col, row int, display string) (Cell, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, err
	}

	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %s: %w", name, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return Bool(strings.EqualFold(display, "true") || display == "1"), nil

	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		raw, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
		if err != nil {
			return Cell{}, fmt.Errorf("cell %s: %w", name, err)
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return Number(n), nil
		}
		return Text(display), nil

	default:
		return Text(display), nil
	}
}
