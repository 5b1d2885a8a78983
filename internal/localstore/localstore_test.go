package localstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterKey(t *testing.T) {
	day := time.Date(2026, 3, 9, 14, 30, 0, 0, time.Local)
	assert.Equal(t, "attendance_CLS1_2026-03-09", RosterKey("CLS1", day))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("userToken", "tok"))
	v, ok, err := s.Get("userToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, s.Delete("userToken"))
	_, ok, _ = s.Get("userToken")
	assert.False(t, ok)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "store.json")
	s, err := NewFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Delete("a"))

	// A second store over the same file sees persisted state.
	s2, err := NewFile(path)
	require.NoError(t, err)
	_, ok, err := s2.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
	v, ok, err := s2.Get("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestJSONHelpers(t *testing.T) {
	type classCtx struct {
		ClassID    string `json:"classId"`
		CourseCode string `json:"courseCode"`
	}
	s := NewMemory()

	var out classCtx
	ok, err := GetJSON(s, KeyCurrentClass, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(s, KeyCurrentClass, classCtx{ClassID: "C1", CourseCode: "CS101"}))
	ok, err = GetJSON(s, KeyCurrentClass, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "CS101", out.CourseCode)

	require.NoError(t, s.Set("bad", "{not json"))
	ok, err = GetJSON(s, "bad", &out)
	assert.True(t, ok)
	assert.Error(t, err)
}
