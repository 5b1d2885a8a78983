package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrattend/internal/attendance"
	"qrattend/internal/localstore"
)

type fakeSubmitter struct {
	submitted []attendance.Record
	err       error
}

func (f *fakeSubmitter) Submit(_ context.Context, rec attendance.Record) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, rec)
	return nil
}

var testClass = &ClassContext{
	ClassID:    "CLS1",
	CourseCode: "CS101",
	CourseName: "Intro to Programming",
	Section:    "A",
	Room:       "Room 204",
	Schedule:   "Mon 10:00-12:00",
}

var testLecturer = LecturerResolution{
	Lecturer: LecturerContext{LecturerID: "LEC7", Name: "Dr. Osei"},
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 9, 10, 15, 0, 0, time.Local)
	return func() time.Time { return t }
}

func newTestSession(t *testing.T, class *ClassContext, sub Submitter, store localstore.Store) *Session {
	t.Helper()
	if store == nil {
		store = localstore.NewMemory()
	}
	s, err := New(class, testLecturer, store, sub, WithClock(fixedClock()))
	require.NoError(t, err)
	return s
}

func TestValidScanIsRecorded(t *testing.T) {
	sub := &fakeSubmitter{}
	store := localstore.NewMemory()
	s := newTestSession(t, testClass, sub, store)

	res := s.Process(context.Background(), "S1001|Jane Doe|jane@example.com")

	require.Equal(t, OutcomeRecorded, res.Kind)
	require.NotNil(t, res.Record)
	assert.Equal(t, "S1001", res.Record.StudentID)
	assert.Equal(t, "Jane Doe", res.Record.StudentName)
	assert.Equal(t, attendance.StatusPresent, res.Record.Status)
	assert.Equal(t, "CS101", res.Record.CourseCode)
	assert.Equal(t, "LEC7", res.Record.LecturerID)
	assert.Equal(t, 1, res.Present)

	// Date is normalized to midnight of the scan's local day.
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local), res.Record.Date)
	// Timestamp keeps the precise capture instant.
	assert.Equal(t, fixedClock()().UnixMilli(), res.Record.Timestamp)

	// One remote submission, one roster mirror entry.
	require.Len(t, sub.submitted, 1)
	var mirrored []attendance.Record
	ok, err := localstore.GetJSON(store, localstore.RosterKey("CLS1", fixedClock()()), &mirrored)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, mirrored, 1)
	assert.Equal(t, res.Record.UniqueID, mirrored[0].UniqueID)
}

func TestUniqueIDHasReadablePrefix(t *testing.T) {
	s := newTestSession(t, testClass, &fakeSubmitter{}, nil)
	res := s.Process(context.Background(), "S1001|Jane Doe|jane@example.com")
	require.NotNil(t, res.Record)
	wantPrefix := "S1001_CS101_" // studentId_courseCode_timestamp_<uuid8>
	assert.Contains(t, res.Record.UniqueID, wantPrefix)
	assert.Greater(t, len(res.Record.UniqueID), len(wantPrefix)+13)
}

func TestDuplicateScanReportedOnce(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newTestSession(t, testClass, sub, nil)

	first := s.Process(context.Background(), "S1001|Jane Doe|jane@example.com")
	require.Equal(t, OutcomeRecorded, first.Kind)

	second := s.Process(context.Background(), "S1001|Jane Doe|jane@example.com")
	require.Equal(t, OutcomeDuplicate, second.Kind)
	require.NotNil(t, second.Prior)
	assert.Equal(t, first.Record.UniqueID, second.Prior.UniqueID)
	assert.NotEmpty(t, second.PriorScanTime)
	assert.Equal(t, 1, second.Present)

	// The remote store was not contacted again.
	assert.Len(t, sub.submitted, 1)
}

func TestFormatErrorLeavesStateUntouched(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newTestSession(t, testClass, sub, nil)

	res := s.Process(context.Background(), "not-a-valid-code")
	assert.Equal(t, OutcomeFormatError, res.Kind)
	assert.Error(t, res.Err)
	assert.Equal(t, 0, res.Present)
	assert.Empty(t, sub.submitted)
}

func TestNonStudentPayloadPassedThrough(t *testing.T) {
	s := newTestSession(t, testClass, &fakeSubmitter{}, nil)

	payload := map[string]any{"classId": "CLS9", "courseCode": "MA200"}
	res := s.Process(context.Background(), payload)
	assert.Equal(t, OutcomeNotStudentData, res.Kind)
	assert.Equal(t, payload, res.Other)
	assert.Equal(t, 0, res.Present)
}

func TestNoClassRefusesRecording(t *testing.T) {
	sub := &fakeSubmitter{}
	store := localstore.NewMemory()
	s := newTestSession(t, nil, sub, store)

	res := s.Process(context.Background(), "S1001|Jane Doe|jane@example.com")
	assert.Equal(t, OutcomeNoClass, res.Kind)
	assert.Equal(t, 0, res.Present)
	assert.Empty(t, sub.submitted)

	// Nothing was persisted locally either.
	_, ok, err := store.Get(localstore.RosterKey("CLS1", fixedClock()()))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoteFailureKeepsRecordLocally(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	store := localstore.NewMemory()
	s := newTestSession(t, testClass, sub, store)

	res := s.Process(context.Background(), "S1001|Jane Doe|jane@example.com")

	require.Equal(t, OutcomeRecordedLocalOnly, res.Kind)
	require.NotNil(t, res.Record)
	assert.True(t, res.Record.LocalOnly)
	assert.Equal(t, 1, res.Present)

	var mirrored []attendance.Record
	ok, err := localstore.GetJSON(store, localstore.RosterKey("CLS1", fixedClock()()), &mirrored)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, mirrored, 1)
	assert.True(t, mirrored[0].LocalOnly)

	// A locally kept student still counts as scanned for dedup purposes.
	dup := s.Process(context.Background(), "S1001|Jane Doe|jane@example.com")
	assert.Equal(t, OutcomeDuplicate, dup.Kind)
}

func TestPresentCountMatchesRosterThroughMixedScans(t *testing.T) {
	s := newTestSession(t, testClass, &fakeSubmitter{}, nil)
	ctx := context.Background()

	s.Process(ctx, "S1|A|a@x")
	s.Process(ctx, "garbage")
	s.Process(ctx, "S2|B|b@x")
	s.Process(ctx, "S1|A|a@x") // duplicate
	s.Process(ctx, "S3|C|c@x")
	s.Process(ctx, "also|bad") // two fields only

	assert.Equal(t, 3, s.Present())
	assert.Equal(t, s.Roster().Count(), s.Present())

	records := s.Roster().Records()
	require.Len(t, records, 3)
	assert.Equal(t, "S1", records[0].StudentID)
	assert.Equal(t, "S2", records[1].StudentID)
	assert.Equal(t, "S3", records[2].StudentID)
}

func TestSessionResumesFromPersistedRoster(t *testing.T) {
	store := localstore.NewMemory()
	sub := &fakeSubmitter{}

	s1 := newTestSession(t, testClass, sub, store)
	s1.Process(context.Background(), "S1001|Jane Doe|jane@example.com")

	// Reopening the same class on the same day resumes the roster, so the
	// student cannot be recorded twice.
	s2 := newTestSession(t, testClass, sub, store)
	assert.Equal(t, 1, s2.Present())
	res := s2.Process(context.Background(), "S1001|Jane Doe|jane@example.com")
	assert.Equal(t, OutcomeDuplicate, res.Kind)
	assert.Len(t, sub.submitted, 1)
}

func TestMissingStudentNameDefaults(t *testing.T) {
	s := newTestSession(t, testClass, &fakeSubmitter{}, nil)
	res := s.Process(context.Background(), map[string]any{"studentId": "S9"})
	require.Equal(t, OutcomeRecorded, res.Kind)
	assert.Equal(t, "Unknown Student", res.Record.StudentName)
}

func TestResolveLecturerFallbackChain(t *testing.T) {
	t.Run("dedicated lecturer record wins", func(t *testing.T) {
		store := localstore.NewMemory()
		require.NoError(t, localstore.SetJSON(store, localstore.KeyLecturerData,
			LecturerContext{LecturerID: "LEC7", Name: "Dr. Osei"}))
		require.NoError(t, localstore.SetJSON(store, localstore.KeyUserData,
			LecturerContext{LecturerID: "U1", Name: "Someone Else"}))

		res := ResolveLecturer(store)
		assert.False(t, res.Defaulted)
		assert.Equal(t, "LEC7", res.Lecturer.LecturerID)
	})

	t.Run("falls back to user record", func(t *testing.T) {
		store := localstore.NewMemory()
		require.NoError(t, localstore.SetJSON(store, localstore.KeyUserData,
			LecturerContext{LecturerID: "U1", Name: "Ms. Park"}))

		res := ResolveLecturer(store)
		assert.False(t, res.Defaulted)
		assert.Equal(t, "U1", res.Lecturer.LecturerID)
	})

	t.Run("sentinel when nothing stored", func(t *testing.T) {
		res := ResolveLecturer(localstore.NewMemory())
		assert.True(t, res.Defaulted)
		assert.Equal(t, "L001", res.Lecturer.LecturerID)
		assert.Equal(t, "Default Lecturer", res.Lecturer.Name)
	})

	t.Run("unreadable entry is skipped", func(t *testing.T) {
		store := localstore.NewMemory()
		require.NoError(t, store.Set(localstore.KeyLecturerData, "{broken"))
		require.NoError(t, localstore.SetJSON(store, localstore.KeyUserData,
			LecturerContext{Name: "Fallback User"}))

		res := ResolveLecturer(store)
		assert.False(t, res.Defaulted)
		assert.Equal(t, "Fallback User", res.Lecturer.Name)
	})
}

func TestOutcomeKindStrings(t *testing.T) {
	assert.Equal(t, "recorded", OutcomeRecorded.String())
	assert.Equal(t, "recorded_local_only", OutcomeRecordedLocalOnly.String())
	assert.Equal(t, "duplicate", OutcomeDuplicate.String())
	assert.Equal(t, "format_error", OutcomeFormatError.String())
	assert.Equal(t, "not_student_data", OutcomeNotStudentData.String())
	assert.Equal(t, "no_class", OutcomeNoClass.String())
	assert.Equal(t, "error", OutcomeError.String())
}
