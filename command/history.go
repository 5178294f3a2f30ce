package command

import (
	"sync"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

// History is the append-only audit log of submitted command lines.
// Records are kept in submission order and each one leaves the executing
// state at most once.
type History struct {
	mu      sync.RWMutex
	nextID  uint64
	records []model.CommandRecord
	index   map[uint64]int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{index: make(map[uint64]int)}
}

// begin appends an executing record for line and returns a copy.
func (h *History) begin(line string, at time.Time) model.CommandRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	rec := model.CommandRecord{
		ID:        h.nextID,
		Command:   line,
		Timestamp: at,
		Status:    model.CommandExecuting,
	}
	h.index[rec.ID] = len(h.records)
	h.records = append(h.records, rec)
	return rec
}

// finish moves the record to a terminal status. It reports false when the
// record is unknown (cleared) or already terminal.
func (h *History) finish(id uint64, status model.CommandStatus, result string) (model.CommandRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	i, ok := h.index[id]
	if !ok || h.records[i].Done() {
		return model.CommandRecord{}, false
	}
	h.records[i].Status = status
	h.records[i].Result = result
	return h.records[i], true
}

// Records returns a copy of all records in submission order.
func (h *History) Records() []model.CommandRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.CommandRecord(nil), h.records...)
}

// Get returns the record with the given id.
func (h *History) Get(id uint64) (model.CommandRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	i, ok := h.index[id]
	if !ok {
		return model.CommandRecord{}, false
	}
	return h.records[i], true
}

// Len returns the number of records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Clear drops every record. IDs keep increasing so a late completion of a
// cleared command cannot land on a new record.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
	h.index = make(map[uint64]int)
}
