package catalog

import "time"

// Class is a course offering owned by one lecturer.
type Class struct {
	ID           string     `json:"id"`
	CourseCode   string     `json:"courseCode"`
	CourseName   string     `json:"courseName"`
	Section      string     `json:"section"`
	Room         string     `json:"room"`
	Schedule     string     `json:"schedule"`
	LecturerID   string     `json:"lecturerId"`
	StudentCount int        `json:"students"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Student is a student account.
type Student struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	YearLevel string    `json:"yearLevel"`
	Section   string    `json:"section"`
	CreatedAt time.Time `json:"createdAt"`

	Password string `json:"-"`
}

// Lecturer is a lecturer account. LecturerID is the human-facing identifier
// classes reference; ID is the row key.
type Lecturer struct {
	ID         string    `json:"id"`
	LecturerID string    `json:"lecturerId"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`

	Password string `json:"-"`
}

// Admin is an administrator account.
type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`

	Password string `json:"-"`
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"classId"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	YearLevel   string    `json:"yearLevel"`
	Section     string    `json:"section"`
	EnrolledAt  time.Time `json:"enrolledAt"`
}

// CascadeResult reports what a class deletion removed alongside the class.
type CascadeResult struct {
	AttendanceDeleted  int64 `json:"attendanceDeleted"`
	EnrollmentsDeleted int64 `json:"enrollmentsDeleted"`
}
