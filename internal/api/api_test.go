package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrattend/internal/attendance"
	"qrattend/internal/audit"
	"qrattend/internal/auth"
	"qrattend/internal/config"
)

type fakeRecordStore struct {
	inserted []attendance.Record
	conflict bool
}

func (f *fakeRecordStore) Insert(_ context.Context, rec attendance.Record) (bool, error) {
	if f.conflict {
		return false, nil
	}
	f.inserted = append(f.inserted, rec)
	return true, nil
}

func (f *fakeRecordStore) ListByClass(_ context.Context, _ string, _ *time.Time, _, _ int) ([]attendance.Record, error) {
	return f.inserted, nil
}

func testConfig() config.App {
	return config.App{
		Env:             "test",
		JWTIssuer:       "qrattend-test",
		JWTSigningKey:   "test-signing-key",
		TokenTTL:        time.Hour,
		RateLimitPerMin: 10000,
	}
}

func newTestServer(t *testing.T, store *fakeRecordStore) (*gin.Engine, *audit.InMemory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	q := audit.NewInMemory(16)
	healthy := func(context.Context) bool { return true }
	srv := New(testConfig(), nil, attendance.NewService(store), q, healthy, healthy)
	return srv.Router(), q
}

func lecturerToken(t *testing.T) string {
	t.Helper()
	cfg := testConfig()
	token, _, err := auth.Issue("u1", "dr.osei", auth.RoleLecturer, "LEC7",
		cfg.JWTIssuer, cfg.JWTSigningKey, cfg.TokenTTL)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validRecordBody() map[string]any {
	return map[string]any{
		"studentId":    "S1001",
		"studentName":  "Jane Doe",
		"courseCode":   "CS101",
		"courseName":   "Intro to Programming",
		"lecturerId":   "LEC7",
		"lecturerName": "Dr. Osei",
		"status":       "present",
		"timestamp":    1700000000000,
		"uniqueId":     "S1001_CS101_1700000000000_abcd1234",
	}
}

func TestRecordAttendanceRequiresAuth(t *testing.T) {
	r, _ := newTestServer(t, &fakeRecordStore{})

	w := doJSON(r, http.MethodPost, "/api/attendance/record", "", validRecordBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/attendance/record", "not-a-jwt", validRecordBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordAttendanceCreates(t *testing.T) {
	store := &fakeRecordStore{}
	r, q := newTestServer(t, store)

	w := doJSON(r, http.MethodPost, "/api/attendance/record", lecturerToken(t), validRecordBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "S1001", store.inserted[0].StudentID)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Attendance recorded", resp["message"])

	// Recording published an audit event.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	events, err := q.Consume(ctx)
	require.NoError(t, err)
	evt := <-events
	assert.Equal(t, audit.ActionAttendanceRecorded, evt.Action)
	assert.Equal(t, "dr.osei", evt.Username)
}

func TestRecordAttendanceReplayReturnsOK(t *testing.T) {
	r, _ := newTestServer(t, &fakeRecordStore{conflict: true})

	w := doJSON(r, http.MethodPost, "/api/attendance/record", lecturerToken(t), validRecordBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "already recorded")
}

func TestRecordAttendanceRejectsIncomplete(t *testing.T) {
	store := &fakeRecordStore{}
	r, _ := newTestServer(t, store)

	body := validRecordBody()
	delete(body, "studentId")
	w := doJSON(r, http.MethodPost, "/api/attendance/record", lecturerToken(t), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.inserted)
}

func TestListAttendanceValidatesDate(t *testing.T) {
	r, _ := newTestServer(t, &fakeRecordStore{})

	w := doJSON(r, http.MethodGet, "/api/attendance/class/CLS1?date=03-09-2026", lecturerToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/attendance/class/CLS1?date=2026-03-09", lecturerToken(t), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginValidatesBody(t *testing.T) {
	r, _ := newTestServer(t, &fakeRecordStore{})
	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]any{"identifier": "jane"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t, &fakeRecordStore{})
	w := doJSON(r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":true`)
}
