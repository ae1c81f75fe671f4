// Package saga keeps an explicit progress record per order so the otherwise
// implicit choreography state can be inspected and stuck orders detected
// after a crash.
package saga

import (
	"sync"
	"time"
)

type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

type Record struct {
	OrderID     string     `json:"order_id"`
	Reservation StepStatus `json:"reservation"`
	Shipment    StepStatus `json:"shipment"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Completed reports whether no further listener action is expected.
func (r Record) Completed() bool {
	if r.Reservation == StepFailed {
		return true
	}
	return r.Reservation == StepOK && (r.Shipment == StepOK || r.Shipment == StepSkipped)
}

type Tracker struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]Record)}
}

func (t *Tracker) Begin(orderID string) {
	now := time.Now().UTC()
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.records[orderID]; ok {
		return
	}
	t.records[orderID] = Record{
		OrderID:     orderID,
		Reservation: StepPending,
		Shipment:    StepPending,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

func (t *Tracker) MarkReservation(orderID string, status StepStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[orderID]
	if !ok {
		return
	}
	rec.Reservation = status
	if status == StepFailed {
		rec.Shipment = StepSkipped
	}
	rec.UpdatedAt = time.Now().UTC()
	t.records[orderID] = rec
}

func (t *Tracker) MarkShipment(orderID string, status StepStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[orderID]
	if !ok {
		return
	}
	rec.Shipment = status
	rec.UpdatedAt = time.Now().UTC()
	t.records[orderID] = rec
}

func (t *Tracker) Get(orderID string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[orderID]
	return rec, ok
}

// FindStuck returns records that have not completed and have not been updated
// within the given age. A recovery sweep can use this to repair orders whose
// listeners died mid-saga.
func (t *Tracker) FindStuck(olderThan time.Duration) []Record {
	cutoff := time.Now().UTC().Add(-olderThan)
	t.mu.RLock()
	defer t.mu.RUnlock()

	var stuck []Record
	for _, rec := range t.records {
		if !rec.Completed() && rec.UpdatedAt.Before(cutoff) {
			stuck = append(stuck, rec)
		}
	}
	return stuck
}
