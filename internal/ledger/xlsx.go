package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"kiosk-go/internal/kiosk"
)

// ReportDirName is the directory under the db root holding the month workbooks.
const ReportDirName = "ATTENDANCE REPORT"

// XLSXStore keeps one workbook per month:
//
//	<root>/ATTENDANCE REPORT/<YEAR>/ATTENDANCE REPORT, <Month> <YEAR>.xlsx
//
// Each workbook has a single sheet named "<Month> <YEAR>".
type XLSXStore struct {
	root string
}

// NewXLSXStore creates a store rooted at the kiosk db directory.
func NewXLSXStore(root string) *XLSXStore {
	return &XLSXStore{root: root}
}

// Path returns the workbook path of a month.
func (s *XLSXStore) Path(year int, month time.Month) string {
	return filepath.Join(s.root, ReportDirName, strconv.Itoa(year),
		fmt.Sprintf("%s, %s.xlsx", ReportDirName, SheetName(year, month)))
}

// SheetName returns the sheet title of a month, e.g. "October 2026".
func SheetName(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month.String(), year)
}

// Open loads the month workbook. A missing workbook yields an empty table that
// is written to disk on its first Save.
func (s *XLSXStore) Open(year int, month time.Month) (kiosk.Table, bool, error) {
	path := s.Path(year, month)
	sheet := SheetName(year, month)

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, false, fmt.Errorf("stat workbook: %w", err)
		}
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("naming sheet: %w", err)
		}
		return &xlsxTable{file: f, path: path, sheet: sheet}, true, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		// Fall back to the first sheet for workbooks renamed by hand.
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("reading rows: %w", err)
	}
	return &xlsxTable{file: f, path: path, sheet: sheet, maxRow: len(rows)}, false, nil
}

// xlsxTable is an open month workbook.
type xlsxTable struct {
	file   *excelize.File
	path   string
	sheet  string
	maxRow int
}

func (t *xlsxTable) Cell(row, col int) (string, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return t.file.GetCellValue(t.sheet, axis)
}

func (t *xlsxTable) SetCell(row, col int, value string) error {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := t.file.SetCellValue(t.sheet, axis, value); err != nil {
		return err
	}
	if row > t.maxRow {
		t.maxRow = row
	}
	return nil
}

func (t *xlsxTable) MaxRow() (int, error) {
	return t.maxRow, nil
}

// Save writes the workbook to a temp file beside the destination and renames
// it into place.
func (t *xlsxTable) Save() error {
	buf, err := t.file.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serializing workbook: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(t.path), ".tmp-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := buf.WriteTo(tmpFile); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (t *xlsxTable) Close() error {
	return t.file.Close()
}

// Compile-time check that XLSXStore implements kiosk.LedgerStore interface
var _ kiosk.LedgerStore = (*XLSXStore)(nil)
