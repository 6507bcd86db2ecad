package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrNoWorksheet = errors.New("workbook has no worksheets")

var allowedExtensions = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".xls":  {},
}

// IsSpreadsheetName reports whether filename carries a spreadsheet extension.
// Legacy .xls passes this gate but cannot be parsed by ReadFirstSheet.
func IsSpreadsheetName(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ReadFirstSheet loads the first worksheet of the workbook at path as raw cell text.
func ReadFirstSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return firstSheetRows(f)
}

func ReadFirstSheetFrom(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return firstSheetRows(f)
}

func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoWorksheet
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
