package session

import (
	"log"

	"qrattend/internal/localstore"
)

// ClassContext identifies the class an attendance session records against.
// It is loaded once by the caller and read-only for the session's lifetime.
type ClassContext struct {
	ClassID    string `json:"classId"`
	CourseCode string `json:"courseCode"`
	CourseName string `json:"courseName"`
	Section    string `json:"section"`
	Room       string `json:"room"`
	Schedule   string `json:"schedule"`
}

// LecturerContext identifies the lecturer running the session.
type LecturerContext struct {
	LecturerID string `json:"lecturerId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// LecturerResolution is the result of the identity fallback chain.
// Defaulted marks the sentinel identity, so callers can tell a real
// lecturer from the placeholder.
type LecturerResolution struct {
	Lecturer  LecturerContext
	Defaulted bool
}

// sentinelLecturer stands in when no lecturer identity can be found; a
// missing lecturer must not block a scan.
var sentinelLecturer = LecturerContext{LecturerID: "L001", Name: "Default Lecturer"}

// ResolveLecturer applies the prioritized chain: the dedicated lecturer
// record, then the generic user record, then the sentinel. Unreadable
// entries are skipped, not fatal.
func ResolveLecturer(store localstore.Store) LecturerResolution {
	for _, key := range []string{localstore.KeyLecturerData, localstore.KeyUserData} {
		var lec LecturerContext
		ok, err := localstore.GetJSON(store, key, &lec)
		if err != nil {
			log.Printf("session: skipping unreadable %s: %v", key, err)
			continue
		}
		if ok && (lec.LecturerID != "" || lec.Name != "") {
			return LecturerResolution{Lecturer: lec}
		}
	}
	return LecturerResolution{Lecturer: sentinelLecturer, Defaulted: true}
}
