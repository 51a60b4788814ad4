package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Reader turns a spreadsheet-like file into named-column records.
type Reader interface {
	Read(path string) ([]Record, error)
}

// ReaderForPath picks a reader based on the file extension.
func ReaderForPath(path string) (Reader, error) {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return &CSVReader{}, nil
	case "xlsx", "xlsm", "xls":
		return &ExcelReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported tabular file extension for %s", path)
	}
}
