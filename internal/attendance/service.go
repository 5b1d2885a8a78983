package attendance

import (
	"context"
	"time"
)

// RecordStore is the persistence surface the service needs.
type RecordStore interface {
	Insert(ctx context.Context, rec Record) (bool, error)
	ListByClass(ctx context.Context, classID string, day *time.Time, limit, offset int) ([]Record, error)
}

// Service validates and persists incoming attendance records.
type Service struct {
	store RecordStore
}

// NewService creates a service backed by a record store.
func NewService(store RecordStore) *Service {
	return &Service{store: store}
}

// Record fills defaults, validates, and persists one record. The returned
// bool is false when the unique_id was already present, in which case the
// submission is treated as a replay of an accepted scan, not an error.
func (s *Service) Record(ctx context.Context, rec Record) (Record, bool, error) {
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	if rec.Date.IsZero() {
		rec.Date = time.UnixMilli(rec.Timestamp)
	}
	rec.Date = midnight(rec.Date)
	if rec.UniqueID == "" {
		rec.UniqueID = NewUniqueID(rec.StudentID, rec.CourseCode, rec.Timestamp)
	}
	rec.LocalOnly = false
	if err := rec.Validate(); err != nil {
		return Record{}, false, err
	}
	inserted, err := s.store.Insert(ctx, rec)
	if err != nil {
		return Record{}, false, err
	}
	if inserted {
		recordsTotal.WithLabelValues("recorded").Inc()
	} else {
		recordsTotal.WithLabelValues("replayed").Inc()
	}
	return rec, inserted, nil
}

// ListByClass returns records for a class, optionally for a single day.
func (s *Service) ListByClass(ctx context.Context, classID string, day *time.Time, limit, offset int) ([]Record, error) {
	if day != nil {
		d := midnight(*day)
		day = &d
	}
	return s.store.ListByClass(ctx, classID, day, limit, offset)
}

// midnight truncates a time to the start of its local day, so all scans of
// one session group under a single date.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
