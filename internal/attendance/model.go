package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record statuses.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Record is the unit persisted per scan, both on the device and remotely.
// Field names match the wire format of POST /api/attendance/record.
type Record struct {
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	CourseCode   string    `json:"courseCode"`
	CourseName   string    `json:"courseName"`
	Section      string    `json:"section"`
	Room         string    `json:"room"`
	Schedule     string    `json:"schedule"`
	LecturerID   string    `json:"lecturerId"`
	LecturerName string    `json:"lecturerName"`
	ClassID      string    `json:"classId,omitempty"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	Timestamp    int64     `json:"timestamp"`
	UniqueID     string    `json:"uniqueId"`

	// LocalOnly marks records whose remote submission failed. It lives only
	// in the device-side roster mirror and is never set by the server.
	LocalOnly bool `json:"localOnly,omitempty"`
}

// NewUniqueID derives the record uniqueness token. The readable
// studentId_courseCode_timestamp prefix is kept for operators; the UUID
// suffix makes rapid repeat scans collision-safe.
func NewUniqueID(studentID, courseCode string, ts int64) string {
	return fmt.Sprintf("%s_%s_%d_%s", studentID, courseCode, ts, uuid.NewString()[:8])
}

// Validate checks the fields the server refuses to persist without.
func (r Record) Validate() error {
	var missing []string
	if r.StudentID == "" {
		missing = append(missing, "studentId")
	}
	if r.StudentName == "" {
		missing = append(missing, "studentName")
	}
	if r.CourseCode == "" {
		missing = append(missing, "courseCode")
	}
	if r.LecturerID == "" {
		missing = append(missing, "lecturerId")
	}
	if r.UniqueID == "" {
		missing = append(missing, "uniqueId")
	}
	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}
	switch r.Status {
	case StatusPresent, StatusAbsent, StatusLate:
	default:
		return fmt.Errorf("invalid status %q", r.Status)
	}
	return nil
}
