package session

import "qrattend/internal/attendance"

// Roster is the ordered, append-only sequence of records for one class and
// calendar day. At most one record exists per studentId; the dedup guard
// enforces that before anything is appended.
type Roster struct {
	records []attendance.Record
}

// Find returns the earliest record for studentID, or nil. Insertion order
// is preserved, so the first scan stays authoritative.
func (r *Roster) Find(studentID string) *attendance.Record {
	for i := range r.records {
		if r.records[i].StudentID == studentID {
			return &r.records[i]
		}
	}
	return nil
}

// Append adds a record. Entries are never removed or mutated afterwards.
func (r *Roster) Append(rec attendance.Record) {
	r.records = append(r.records, rec)
}

// Count is the number of students marked present.
func (r *Roster) Count() int {
	return len(r.records)
}

// Records returns a copy of the sequence in scan order.
func (r *Roster) Records() []attendance.Record {
	out := make([]attendance.Record, len(r.records))
	copy(out, r.records)
	return out
}
