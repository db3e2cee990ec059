package ledger

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"kiosk-go/internal/kiosk"
)

type cellKey struct{ row, col int }

type monthKey struct {
	year  int
	month time.Month
}

// MemoryStore keeps month tables in memory, making it useful for testing.
// Changes made through a Table become visible to later Opens only after Save.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	tables map[monthKey]map[cellKey]string
	saves  map[monthKey]int
	mu     sync.Mutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[monthKey]map[cellKey]string),
		saves:  make(map[monthKey]int),
	}
}

// Open returns a working copy of the month table.
func (m *MemoryStore) Open(year int, month time.Month) (kiosk.Table, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := monthKey{year, month}
	cells, ok := m.tables[key]
	if !ok {
		return &memoryTable{store: m, key: key, cells: make(map[cellKey]string)}, true, nil
	}
	return &memoryTable{store: m, key: key, cells: maps.Clone(cells)}, false, nil
}

// Path returns a label for the month table.
func (m *MemoryStore) Path(year int, month time.Month) string {
	return "memory:" + SheetName(year, month)
}

// Saves reports how many times the month table has been saved.
func (m *MemoryStore) Saves(year int, month time.Month) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[monthKey{year, month}]
}

// memoryTable is a working copy of one month.
type memoryTable struct {
	store  *MemoryStore
	key    monthKey
	cells  map[cellKey]string
	closed bool
}

func (t *memoryTable) Cell(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", fmt.Errorf("invalid cell %d,%d", row, col)
	}
	return t.cells[cellKey{row, col}], nil
}

func (t *memoryTable) SetCell(row, col int, value string) error {
	if t.closed {
		return fmt.Errorf("table is closed")
	}
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell %d,%d", row, col)
	}
	t.cells[cellKey{row, col}] = value
	return nil
}

func (t *memoryTable) MaxRow() (int, error) {
	maxRow := 0
	for k := range t.cells {
		if k.row > maxRow {
			maxRow = k.row
		}
	}
	return maxRow, nil
}

func (t *memoryTable) Save() error {
	if t.closed {
		return fmt.Errorf("table is closed")
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.tables[t.key] = maps.Clone(t.cells)
	t.store.saves[t.key]++
	return nil
}

func (t *memoryTable) Close() error {
	t.closed = true
	return nil
}

// Compile-time check that MemoryStore implements kiosk.LedgerStore interface
var _ kiosk.LedgerStore = (*MemoryStore)(nil)
