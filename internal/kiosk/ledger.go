package kiosk

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// LedgerDays is the fixed number of day column pairs in every month table.
	LedgerDays = 31

	// HeaderRow holds the column titles.
	HeaderRow = 1

	// UsernameColumn holds the username of every data row.
	UsernameColumn = 1

	ledgerTimeLayout = "03:04 PM"
)

// Table is one month of the ledger. Rows and columns are 1-based.
// Cell returns "" for empty cells.
type Table interface {
	Cell(row, col int) (string, error)
	SetCell(row, col int, value string) error
	MaxRow() (int, error)
	Save() error
	Close() error
}

// LedgerStore opens month tables. created is true when Open made a new, empty table.
type LedgerStore interface {
	Open(year int, month time.Month) (table Table, created bool, err error)
	Path(year int, month time.Month) string
}

// Column returns the ledger column of dir on day (1-based day of month).
func Column(day int, dir Direction) int {
	if dir == OutTime {
		return (day-1)*2 + 3
	}
	return (day-1)*2 + 2
}

// HeaderValues returns the header row: USERNAME followed by an IN and OUT title per day.
func HeaderValues() []string {
	header := make([]string, 0, 1+LedgerDays*2)
	header = append(header, "USERNAME")
	for day := 1; day <= LedgerDays; day++ {
		header = append(header, strconv.Itoa(day)+" "+InTime.String())
		header = append(header, strconv.Itoa(day)+" "+OutTime.String())
	}
	return header
}

// LedgerRow is one user's marks for a month, indexed by day-1.
type LedgerRow struct {
	Row      int
	Username string
	In       [LedgerDays]string
	Out      [LedgerDays]string
}

// Ledger records IN/OUT marks in per-month tables. The first IN of a day
// sticks; every OUT replaces the previous one. Each write is saved before
// RecordEvent returns.
type Ledger struct {
	store  LedgerStore
	logger Logger
}

// NewLedger creates a Ledger over store.
func NewLedger(store LedgerStore, logger Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Bootstrap makes sure the table for the month of ts exists.
func (l *Ledger) Bootstrap(ts time.Time) error {
	table, err := l.open(ts)
	if err != nil {
		return err
	}
	return table.Close()
}

// RecordEvent writes ts into the dir cell of username for the day of ts.
// It returns the location of the saved table.
func (l *Ledger) RecordEvent(username string, dir Direction, ts time.Time) (string, error) {
	table, err := l.open(ts)
	if err != nil {
		return "", err
	}
	defer table.Close()

	row, err := findOrCreateRow(table, username)
	if err != nil {
		return "", err
	}
	col := Column(ts.Day(), dir)
	value := ts.Format(ledgerTimeLayout)

	if dir == InTime {
		current, err := table.Cell(row, col)
		if err != nil {
			return "", fmt.Errorf("reading in time: %w", err)
		}
		if current != "" {
			l.logger.Debug("in time already recorded", "username", username, "row", row, "value", current)
			value = ""
		}
	}

	if value != "" {
		if err := table.SetCell(row, col, value); err != nil {
			return "", fmt.Errorf("writing %s: %w", dir, err)
		}
	}
	if err := table.Save(); err != nil {
		return "", fmt.Errorf("saving ledger: %w", err)
	}

	l.logger.Info("attendance recorded", "username", username, "direction", dir.String(), "row", row, "col", col)
	return l.store.Path(ts.Year(), ts.Month()), nil
}

// EventTime returns the recorded dir value of username for the day of ts.
func (l *Ledger) EventTime(username string, dir Direction, ts time.Time) (string, bool, error) {
	table, err := l.open(ts)
	if err != nil {
		return "", false, err
	}
	defer table.Close()

	row, found, err := findRow(table, username)
	if err != nil || !found {
		return "", false, err
	}
	value, err := table.Cell(row, Column(ts.Day(), dir))
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", dir, err)
	}
	return value, value != "", nil
}

// RowOf returns the row assigned to username in the month of ts.
func (l *Ledger) RowOf(username string, ts time.Time) (int, bool, error) {
	table, err := l.open(ts)
	if err != nil {
		return 0, false, err
	}
	defer table.Close()
	return findRow(table, username)
}

// Rows reads every user row of a month table in row order. A month without
// a table has no rows, and no table is created for it.
func (l *Ledger) Rows(year int, month time.Month) ([]LedgerRow, error) {
	table, created, err := l.store.Open(year, month)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer table.Close()
	if created {
		return nil, nil
	}

	maxRow, err := table.MaxRow()
	if err != nil {
		return nil, fmt.Errorf("reading table size: %w", err)
	}

	var rows []LedgerRow
	for r := HeaderRow + 1; r <= maxRow; r++ {
		name, err := table.Cell(r, UsernameColumn)
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", r, err)
		}
		if name == "" {
			continue
		}
		row := LedgerRow{Row: r, Username: name}
		for day := 1; day <= LedgerDays; day++ {
			if row.In[day-1], err = table.Cell(r, Column(day, InTime)); err != nil {
				return nil, fmt.Errorf("reading row %d: %w", r, err)
			}
			if row.Out[day-1], err = table.Cell(r, Column(day, OutTime)); err != nil {
				return nil, fmt.Errorf("reading row %d: %w", r, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// open returns the month table for ts, writing the header into new tables.
func (l *Ledger) open(ts time.Time) (Table, error) {
	table, created, err := l.store.Open(ts.Year(), ts.Month())
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if !created {
		return table, nil
	}

	for i, title := range HeaderValues() {
		if err := table.SetCell(HeaderRow, i+1, title); err != nil {
			table.Close()
			return nil, fmt.Errorf("writing ledger header: %w", err)
		}
	}
	if err := table.Save(); err != nil {
		table.Close()
		return nil, fmt.Errorf("saving new ledger: %w", err)
	}

	l.logger.Info("ledger created", "path", l.store.Path(ts.Year(), ts.Month()))
	return table, nil
}

// findRow scans data rows for username.
func findRow(table Table, username string) (int, bool, error) {
	maxRow, err := table.MaxRow()
	if err != nil {
		return 0, false, fmt.Errorf("reading table size: %w", err)
	}
	for r := HeaderRow + 1; r <= maxRow; r++ {
		name, err := table.Cell(r, UsernameColumn)
		if err != nil {
			return 0, false, fmt.Errorf("reading row %d: %w", r, err)
		}
		if name == username {
			return r, true, nil
		}
	}
	return 0, false, nil
}

// findOrCreateRow returns the row of username, appending one after the last
// row on first sighting. Assigned rows never move.
func findOrCreateRow(table Table, username string) (int, error) {
	row, found, err := findRow(table, username)
	if err != nil {
		return 0, err
	}
	if found {
		return row, nil
	}

	maxRow, err := table.MaxRow()
	if err != nil {
		return 0, fmt.Errorf("reading table size: %w", err)
	}
	row = max(maxRow, HeaderRow) + 1
	if err := table.SetCell(row, UsernameColumn, username); err != nil {
		return 0, fmt.Errorf("adding row for %s: %w", username, err)
	}
	return row, nil
}
