// Package export renders tabular reports as CSV or XLSX.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// utf8BOM makes spreadsheet apps detect UTF-8 in CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a titled grid. Cells may be string, int, float64, decimal.Decimal
// or nil.
type Table struct {
	Sheet   string
	Title   string
	Headers []string
	Rows    [][]any
	Footer  []any
}

// CSV writes headers, rows and footer as UTF-8 with a BOM. The title is not
// part of the CSV output.
func CSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(stringify(row)); err != nil {
			return nil, err
		}
	}
	if len(t.Footer) > 0 {
		if err := w.Write(stringify(t.Footer)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringify(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellString(v)
	}
	return out
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case float64:
		return fmt.Sprintf("%.2f", val)
	case decimal.Decimal:
		return val.StringFixed(2)
	default:
		return fmt.Sprint(val)
	}
}

// XLSX renders the table on one sheet: title row, header row, data, footer.
func XLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Report"
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	footerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	row := 1
	if t.Title != "" {
		if err := f.SetCellValue(sheet, "A1", t.Title); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
			return nil, err
		}
		row = 3
	}

	headerRow := row
	if err := setRow(f, sheet, row, toAny(t.Headers)); err != nil {
		return nil, err
	}
	if len(t.Headers) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), row)
		if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
			return nil, err
		}
	}
	row++

	for _, r := range t.Rows {
		if err := setRow(f, sheet, row, xlsxCells(r)); err != nil {
			return nil, err
		}
		row++
	}

	if len(t.Footer) > 0 {
		if err := setRow(f, sheet, row, xlsxCells(t.Footer)); err != nil {
			return nil, err
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(t.Footer), row)
		if err := f.SetCellStyle(sheet, first, last, footerStyle); err != nil {
			return nil, err
		}
	}

	if len(t.Headers) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return nil, err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// xlsxCells keeps numbers numeric so totals can be summed in the sheet.
func xlsxCells(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case decimal.Decimal:
			out[i] = val.Round(2).InexactFloat64()
		case *string:
			out[i] = cellString(val)
		default:
			out[i] = val
		}
	}
	return out
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Filename builds "<prefix>_<stamp>.<ext>".
func Filename(prefix, stamp, ext string) string {
	if stamp == "" {
		stamp = time.Now().Format("20060102")
	}
	return fmt.Sprintf("%s_%s.%s", prefix, stamp, ext)
}
