package monitor

import (
	"sync"
	"time"

	"github.com/charlie0129/battmon/pkg/battery"
)

// Record is one successful sample.
type Record struct {
	Time   time.Time       `json:"time"`
	Status *battery.Status `json:"status"`
}

// Recorder keeps the last N records.
type Recorder struct {
	MaxRecordCount int
	records        []Record
	mu             *sync.Mutex
}

// NewRecorder returns a new Recorder.
func NewRecorder(maxRecordCount int) *Recorder {
	if maxRecordCount < 1 {
		maxRecordCount = 1
	}
	return &Recorder{
		MaxRecordCount: maxRecordCount,
		records:        make([]Record, 0),
		mu:             &sync.Mutex{},
	}
}

// Add adds a new record taken at t.
func (r *Recorder) Add(t time.Time, st *battery.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strip monotonic clock reading.
	t = t.Round(0)

	if len(r.records) >= r.MaxRecordCount {
		r.records = r.records[len(r.records)-r.MaxRecordCount+1:]
	}
	r.records = append(r.records, Record{Time: t, Status: st})
}

// Resize changes the capacity, dropping the oldest records if needed.
func (r *Recorder) Resize(maxRecordCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxRecordCount < 1 {
		maxRecordCount = 1
	}
	r.MaxRecordCount = maxRecordCount
	if len(r.records) > maxRecordCount {
		r.records = r.records[len(r.records)-maxRecordCount:]
	}
}

// Clear clears all records.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make([]Record, 0)
}

// Records returns a copy of all records, oldest first.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Record(nil), r.records...)
}

// RecordsIn returns the records taken within the last duration, oldest first.
func (r *Recorder) RecordsIn(last time.Duration) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := len(r.records)
	for i > 0 && time.Since(r.records[i-1].Time) <= last {
		i--
	}

	return append([]Record(nil), r.records[i:]...)
}

// Last returns the last record, if any.
func (r *Recorder) Last() (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) == 0 {
		return Record{}, false
	}
	return r.records[len(r.records)-1], true
}
