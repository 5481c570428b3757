package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"invoicely/internal/core/apperror"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", apperror.NewFieldValidation("format", "Unsupported export format").WithDetail("format", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename builds a download name such as "sales_report.csv".
func (f Format) Filename(reportName string) string {
	base := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(reportName), "_"), "_")
	if base == "" {
		base = "report"
	}
	return base + "." + string(f)
}

// Columns returns the export columns: the keys of the first row.
func Columns(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Keys()
}

// ExportCSV writes rows as CSV. The header is the first row's keys; later rows
// are written in that column order, missing keys as empty cells and extra keys
// dropped. Numbers are written with exactly 2 decimals. No rows writes nothing.
func ExportCSV(w io.Writer, rows []Row) error {
	cols := Columns(rows)
	if len(cols) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for i, row := range rows {
		for j, col := range cols {
			v, _ := row.Get(col)
			record[j] = FormatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "Report"

// maxSheetName is the worksheet name limit in runes.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "-", `\`, "-", "/", "-", "?", "-", "*", "-", "[", "(", "]", ")",
)

// SheetName turns a report title into a valid worksheet name. Characters
// spreadsheets reject are replaced and the result is cut to 31 runes.
func SheetName(title string) string {
	name := sheetNameReplacer.Replace(title)
	name = strings.Trim(name, " '")
	if r := []rune(name); len(r) > maxSheetName {
		name = strings.Trim(string(r[:maxSheetName]), " '")
	}
	if name == "" {
		return DefaultSheet
	}
	return name
}

// ExportXLSX writes rows as a single-sheet workbook with the same columns as
// ExportCSV. Numbers are stored as numeric cells rounded to 2 decimals.
func ExportXLSX(w io.Writer, rows []Row, sheet string) error {
	sheet = SheetName(sheet)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	cols := Columns(rows)
	for j, col := range cols {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range rows {
		for j, col := range cols {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			v, _ := row.Get(col)
			if d, ok := numeric(v); ok {
				err = f.SetCellFloat(sheet, cell, d.Round(2).InexactFloat64(), 2, 64)
			} else {
				err = f.SetCellStr(sheet, cell, FormatCell(v))
			}
			if err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Export writes rows in the given format.
func Export(w io.Writer, format Format, rows []Row, sheet string) error {
	switch format {
	case FormatXLSX:
		return ExportXLSX(w, rows, sheet)
	default:
		return ExportCSV(w, rows)
	}
}
