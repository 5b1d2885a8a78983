package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// FindStudentByIdentifier matches username, email, or studentId. The
// returned record includes the password hash for credential checks.
func (r *Repository) FindStudentByIdentifier(ctx context.Context, identifier string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, username, name, email, password, year_level, section, created_at
		FROM students
		WHERE username = $1 OR email = $1 OR student_id = $1
	`, identifier)
	var s Student
	err := row.Scan(&s.ID, &s.StudentID, &s.Username, &s.Name, &s.Email,
		&s.Password, &s.YearLevel, &s.Section, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return s, err
}

// FindLecturerByIdentifier matches username or email.
func (r *Repository) FindLecturerByIdentifier(ctx context.Context, identifier string) (Lecturer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lecturer_id, username, name, email, password, department, created_at
		FROM lecturers
		WHERE username = $1 OR email = $1
	`, identifier)
	var l Lecturer
	err := row.Scan(&l.ID, &l.LecturerID, &l.Username, &l.Name, &l.Email,
		&l.Password, &l.Department, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lecturer{}, ErrNotFound
	}
	return l, err
}

// FindAdminByIdentifier matches username or email.
func (r *Repository) FindAdminByIdentifier(ctx context.Context, identifier string) (Admin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, name, email, password, created_at
		FROM admins
		WHERE username = $1 OR email = $1
	`, identifier)
	var a Admin
	err := row.Scan(&a.ID, &a.Username, &a.Name, &a.Email, &a.Password, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	return a, err
}
