package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Repository persists the class/student/lecturer catalog in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const classColumns = `id, course_code, course_name, section, room, schedule,
	lecturer_id, student_count, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (Class, error) {
	var c Class
	err := row.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Section, &c.Room,
		&c.Schedule, &c.LecturerID, &c.StudentCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListClasses returns all classes.
func (r *Repository) ListClasses(ctx context.Context) ([]Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes ORDER BY course_code, section`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// GetClass returns one class by row id. A malformed id is a plain miss, not
// a database error.
func (r *Repository) GetClass(ctx context.Context, id string) (Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Class{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1::uuid`, id)
	c, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Class{}, ErrNotFound
	}
	return c, err
}

// ListClassesByLecturer returns the classes owned by a lecturer.
func (r *Repository) ListClassesByLecturer(ctx context.Context, lecturerID string) ([]Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE lecturer_id = $1 ORDER BY course_code, section`,
		lecturerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// CreateClass inserts a class and returns it with generated fields.
func (r *Repository) CreateClass(ctx context.Context, c Class) (Class, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO classes (course_code, course_name, section, room, schedule, lecturer_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`, c.CourseCode, c.CourseName, c.Section, c.Room, c.Schedule, c.LecturerID)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return Class{}, err
	}
	return c, nil
}

// UpdateClass updates the editable class fields.
func (r *Repository) UpdateClass(ctx context.Context, c Class) (Class, error) {
	if _, err := uuid.Parse(c.ID); err != nil {
		return Class{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE classes
		SET course_code = $2, course_name = $3, section = $4, room = $5,
		    schedule = $6, updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING `+classColumns+`
	`, c.ID, c.CourseCode, c.CourseName, c.Section, c.Room, c.Schedule)
	updated, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Class{}, ErrNotFound
	}
	return updated, err
}

// DeleteClassCascade removes a class together with its attendance records
// and enrollments, atomically.
func (r *Repository) DeleteClassCascade(ctx context.Context, classID string) (CascadeResult, error) {
	var res CascadeResult
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	att, err := tx.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE class_id = $1::uuid`, classID)
	if err != nil {
		return res, fmt.Errorf("delete attendance records: %w", err)
	}
	res.AttendanceDeleted, _ = att.RowsAffected()

	enr, err := tx.ExecContext(ctx,
		`DELETE FROM class_students WHERE class_id = $1::uuid`, classID)
	if err != nil {
		return res, fmt.Errorf("delete enrollments: %w", err)
	}
	res.EnrollmentsDeleted, _ = enr.RowsAffected()

	cls, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1::uuid`, classID)
	if err != nil {
		return res, fmt.Errorf("delete class: %w", err)
	}
	if n, _ := cls.RowsAffected(); n == 0 {
		return res, ErrNotFound
	}
	return res, tx.Commit()
}

// GetLecturerByAnyID finds a lecturer by row id or human-facing lecturerId.
func (r *Repository) GetLecturerByAnyID(ctx context.Context, id string) (Lecturer, error) {
	if _, err := uuid.Parse(id); err == nil {
		lec, err := r.getLecturer(ctx, `id = $1::uuid`, id)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return lec, err
		}
	}
	return r.getLecturer(ctx, `lecturer_id = $1`, id)
}

func (r *Repository) getLecturer(ctx context.Context, where string, arg any) (Lecturer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lecturer_id, username, name, email, department, created_at
		FROM lecturers WHERE `+where, arg)
	var l Lecturer
	err := row.Scan(&l.ID, &l.LecturerID, &l.Username, &l.Name, &l.Email,
		&l.Department, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lecturer{}, ErrNotFound
	}
	return l, err
}

// ListLecturers returns all lecturers.
func (r *Repository) ListLecturers(ctx context.Context) ([]Lecturer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lecturer_id, username, name, email, department, created_at
		FROM lecturers ORDER BY lecturer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Lecturer
	for rows.Next() {
		var l Lecturer
		if err := rows.Scan(&l.ID, &l.LecturerID, &l.Username, &l.Name, &l.Email,
			&l.Department, &l.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// CreateLecturer inserts a lecturer with an already-hashed password.
func (r *Repository) CreateLecturer(ctx context.Context, l Lecturer) (Lecturer, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO lecturers (lecturer_id, username, name, email, password, department)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at
	`, l.LecturerID, l.Username, l.Name, l.Email, l.Password, l.Department)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return Lecturer{}, err
	}
	l.Password = ""
	return l, nil
}

// ListStudents returns all student accounts.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, username, name, email, year_level, section, created_at
		FROM students ORDER BY student_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.StudentID, &s.Username, &s.Name, &s.Email,
			&s.YearLevel, &s.Section, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// CreateStudent inserts a student account with an already-hashed password.
func (r *Repository) CreateStudent(ctx context.Context, s Student) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (student_id, username, name, email, password, year_level, section)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at
	`, s.StudentID, s.Username, s.Name, s.Email, s.Password, s.YearLevel, s.Section)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return Student{}, err
	}
	s.Password = ""
	return s, nil
}

// DeleteStudent removes a student account by row id.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnrollStudent adds a student to a class and bumps the class counter in
// the same transaction. Re-enrolling is a no-op.
func (r *Repository) EnrollStudent(ctx context.Context, e Enrollment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO class_students (class_id, student_id, student_name, year_level, section)
		VALUES ($1::uuid,$2,$3,$4,$5)
		ON CONFLICT (class_id, student_id) DO NOTHING
	`, e.ClassID, e.StudentID, e.StudentName, e.YearLevel, e.Section)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE classes SET student_count = student_count + 1 WHERE id = $1::uuid
	`, e.ClassID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEnrollments returns the students enrolled in a class.
func (r *Repository) ListEnrollments(ctx context.Context, classID string) ([]Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, class_id, student_id, student_name, year_level, section, enrolled_at
		FROM class_students WHERE class_id = $1::uuid ORDER BY enrolled_at
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.ClassID, &e.StudentID, &e.StudentName,
			&e.YearLevel, &e.Section, &e.EnrolledAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
