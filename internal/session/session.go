// Package session runs the attendance-recording workflow for one class and
// day: parse a scanned code, guard against duplicates, submit to the remote
// store, and keep the local roster regardless of the remote outcome.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"qrattend/internal/attendance"
	"qrattend/internal/localstore"
	"qrattend/internal/scan"
)

// OutcomeKind classifies how one scan ended. Every scan reaches exactly one
// of these; nothing escapes to crash the session.
type OutcomeKind int

const (
	// OutcomeRecorded means the record was accepted remotely and appended.
	OutcomeRecorded OutcomeKind = iota
	// OutcomeRecordedLocalOnly means remote submission failed; the record
	// was still appended and mirrored locally. There is no retry.
	OutcomeRecordedLocalOnly
	// OutcomeDuplicate means the student was already on the roster; nothing
	// new was created and the remote store was not contacted.
	OutcomeDuplicate
	// OutcomeFormatError means the payload failed the strict format check.
	OutcomeFormatError
	// OutcomeNotStudentData means the payload was well formed but carries no
	// student identity (e.g. a class-selection code).
	OutcomeNotStudentData
	// OutcomeNoClass means no class context is present; recording refused.
	OutcomeNoClass
	// OutcomeError covers unexpected failures; the scan is dropped with no
	// partial record.
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeRecordedLocalOnly:
		return "recorded_local_only"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFormatError:
		return "format_error"
	case OutcomeNotStudentData:
		return "not_student_data"
	case OutcomeNoClass:
		return "no_class"
	default:
		return "error"
	}
}

// Result is what one processed scan yields.
type Result struct {
	Kind          OutcomeKind
	Record        *attendance.Record // set for the two recorded outcomes
	Prior         *attendance.Record // set for duplicates
	PriorScanTime string             // local-time formatting of the prior scan
	Other         map[string]any     // set for non-student payloads
	Err           error
	Present       int // roster count after this scan
}

// Submitter sends a record to the remote store.
type Submitter interface {
	Submit(ctx context.Context, rec attendance.Record) error
}

// Session processes scans for one (class, calendar-day) pair. It is driven
// from a single task chain; scans are handled to completion one at a time.
type Session struct {
	class    *ClassContext
	lecturer LecturerResolution
	store    localstore.Store
	remote   Submitter
	roster   *Roster
	day      time.Time
	now      func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New opens a session. class and lecturer are explicit arguments rather
// than ambient reads, so the workflow is testable in isolation; class may
// be nil, in which case every student scan yields OutcomeNoClass.
//
// An existing roster mirror for the same class and day is reloaded, so a
// reopened session resumes instead of re-admitting students it already
// recorded.
func New(class *ClassContext, lecturer LecturerResolution, store localstore.Store, remote Submitter, opts ...Option) (*Session, error) {
	s := &Session{
		class:    class,
		lecturer: lecturer,
		store:    store,
		remote:   remote,
		roster:   &Roster{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.day = midnight(s.now())

	if class != nil {
		var records []attendance.Record
		ok, err := localstore.GetJSON(store, localstore.RosterKey(class.ClassID, s.day), &records)
		if err != nil {
			return nil, fmt.Errorf("session: reload roster: %w", err)
		}
		if ok {
			for _, rec := range records {
				s.roster.Append(rec)
			}
		}
	}
	return s, nil
}

// Class returns the session's class context, or nil.
func (s *Session) Class() *ClassContext { return s.class }

// Lecturer returns the resolved lecturer identity.
func (s *Session) Lecturer() LecturerResolution { return s.lecturer }

// Roster returns the session roster.
func (s *Session) Roster() *Roster { return s.roster }

// Present is the current present count, always equal to the roster length.
func (s *Session) Present() int { return s.roster.Count() }

// Process runs one scan through the full workflow:
//
//	parse -> dedup check -> class precondition -> remote submit -> roster append
//
// The roster is updated whether or not the remote store accepted the
// record; only parse rejections, duplicates, and the missing-class refusal
// leave state untouched.
func (s *Session) Process(ctx context.Context, payload any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Kind:    OutcomeError,
				Err:     fmt.Errorf("session: scan dropped: %v", r),
				Present: s.roster.Count(),
			}
		}
		scansTotal.WithLabelValues(res.Kind.String()).Inc()
	}()
	return s.process(ctx, payload)
}

func (s *Session) process(ctx context.Context, payload any) Result {
	parsed, err := scan.Parse(payload)
	if err != nil {
		return Result{Kind: OutcomeFormatError, Err: err, Present: s.roster.Count()}
	}
	if parsed.Student == nil {
		return Result{Kind: OutcomeNotStudentData, Other: parsed.Other, Present: s.roster.Count()}
	}
	student := *parsed.Student

	if prior := s.roster.Find(student.StudentID); prior != nil {
		return Result{
			Kind:          OutcomeDuplicate,
			Prior:         prior,
			PriorScanTime: time.UnixMilli(prior.Timestamp).Local().Format("15:04:05"),
			Present:       s.roster.Count(),
		}
	}

	if s.class == nil {
		return Result{Kind: OutcomeNoClass, Present: s.roster.Count()}
	}

	rec := s.buildRecord(student)
	kind := OutcomeRecorded
	if err := s.remote.Submit(ctx, rec); err != nil {
		log.Printf("session: remote submission failed, keeping record locally: %v", err)
		rec.LocalOnly = true
		kind = OutcomeRecordedLocalOnly
	}

	s.roster.Append(rec)
	if err := s.persistRoster(); err != nil {
		log.Printf("session: roster mirror write failed: %v", err)
	}

	return Result{Kind: kind, Record: &rec, Present: s.roster.Count()}
}

func (s *Session) buildRecord(student scan.StudentIdentity) attendance.Record {
	name := student.Name
	if name == "" {
		name = "Unknown Student"
	}
	ts := s.now().UnixMilli()
	return attendance.Record{
		StudentID:    student.StudentID,
		StudentName:  name,
		CourseCode:   s.class.CourseCode,
		CourseName:   s.class.CourseName,
		Section:      s.class.Section,
		Room:         s.class.Room,
		Schedule:     s.class.Schedule,
		LecturerID:   s.lecturer.Lecturer.LecturerID,
		LecturerName: s.lecturer.Lecturer.Name,
		ClassID:      s.class.ClassID,
		Date:         s.day,
		Status:       attendance.StatusPresent,
		Timestamp:    ts,
		UniqueID:     attendance.NewUniqueID(student.StudentID, s.class.CourseCode, ts),
	}
}

func (s *Session) persistRoster() error {
	key := localstore.RosterKey(s.class.ClassID, s.day)
	return localstore.SetJSON(s.store, key, s.roster.Records())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
