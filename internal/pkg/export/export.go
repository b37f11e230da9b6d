package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Headers are the column titles of the daily attendance export.
var Headers = []string{"Tanggal", "ID Pegawai", "Nama", "Tipe", "Waktu", "Lokasi", "Status"}

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Row is one clock event in the export.
type Row struct {
	Date       string
	EmployeeID string
	Name       string
	Type       string
	Time       string
	Location   string
	Status     string
}

func (r Row) values() []string {
	return []string{r.Date, r.EmployeeID, r.Name, r.Type, r.Time, r.Location, r.Status}
}

// WriteCSV writes the header line followed by rows.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders rows as a CSV document.
func CSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX renders rows into a single-sheet workbook.
func XLSX(sheet string, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Truncate sheet name to 31 chars (Excel limit)
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeXLSXRow(f, sheet, 1, Headers); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(Headers), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, style)
	}

	for i, row := range rows {
		if err := writeXLSXRow(f, sheet, i+2, row.values()); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSXRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
