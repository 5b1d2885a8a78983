package attendance

import (
	"context"
	"database/sql"
	"strconv"
	"time"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a record. It returns false when a record with the same
// unique_id already exists; the existing row wins.
func (r *Repository) Insert(ctx context.Context, rec Record) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records
			(student_id, student_name, course_code, course_name, section, room,
			 schedule, lecturer_id, lecturer_name, class_id, date, status,
			 timestamp_ms, unique_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,'')::uuid,$11,$12,$13,$14)
		ON CONFLICT (unique_id) DO NOTHING
	`, rec.StudentID, rec.StudentName, rec.CourseCode, rec.CourseName, rec.Section,
		rec.Room, rec.Schedule, rec.LecturerID, rec.LecturerName, rec.ClassID,
		rec.Date, rec.Status, rec.Timestamp, rec.UniqueID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByClass returns records for a class, optionally restricted to one day.
func (r *Repository) ListByClass(ctx context.Context, classID string, day *time.Time, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT student_id, student_name, course_code, course_name, section, room,
		       schedule, lecturer_id, lecturer_name, COALESCE(class_id::text, ''),
		       date, status, timestamp_ms, unique_id
		FROM attendance_records
		WHERE class_id = $1::uuid`
	args := []any{classID}
	if day != nil {
		query += ` AND date = $2`
		args = append(args, *day)
	}
	query += ` ORDER BY timestamp_ms ASC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.StudentID, &rec.StudentName, &rec.CourseCode,
			&rec.CourseName, &rec.Section, &rec.Room, &rec.Schedule,
			&rec.LecturerID, &rec.LecturerName, &rec.ClassID,
			&rec.Date, &rec.Status, &rec.Timestamp, &rec.UniqueID); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// CountByClassDay returns the number of present records for one class/day.
func (r *Repository) CountByClassDay(ctx context.Context, classID string, day time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records
		WHERE class_id = $1::uuid AND date = $2 AND status = $3
	`, classID, day, StatusPresent).Scan(&n)
	return n, err
}
