package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePipeDelimited(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    StudentIdentity
	}{
		{"plain", "S1001|Jane Doe|jane@example.com", StudentIdentity{"S1001", "Jane Doe", "jane@example.com"}},
		{"surrounding whitespace", "  S1001|Jane Doe|jane@example.com \n", StudentIdentity{"S1001", "Jane Doe", "jane@example.com"}},
		{"leading BOM", "\uFEFFS1001|Jane Doe|jane@example.com", StudentIdentity{"S1001", "Jane Doe", "jane@example.com"}},
		{"fields keep inner spaces", "S2|Mary Jane Watson|mj@example.com", StudentIdentity{"S2", "Mary Jane Watson", "mj@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.payload)
			require.NoError(t, err)
			require.NotNil(t, res.Student)
			assert.Equal(t, tt.want, *res.Student)
		})
	}
}

func TestParseRejectsMalformedText(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no pipes", "not-a-valid-code"},
		{"two fields", "S1001|Jane Doe"},
		{"four fields", "S1001|Jane|jane@example.com|extra"},
		{"empty field", "S1001||jane@example.com"},
		{"empty string", ""},
		{"json is not accepted", `{"studentId":"S1001","name":"Jane","email":"jane@example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.payload)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Nil(t, res.Student)
		})
	}
}

func TestParseStructuredPayloads(t *testing.T) {
	t.Run("identity struct accepted", func(t *testing.T) {
		res, err := Parse(StudentIdentity{StudentID: "S1", Name: "A", Email: "a@x"})
		require.NoError(t, err)
		require.NotNil(t, res.Student)
		assert.Equal(t, "S1", res.Student.StudentID)
	})

	t.Run("map with studentId accepted", func(t *testing.T) {
		res, err := Parse(map[string]any{"studentId": "S2", "name": "B"})
		require.NoError(t, err)
		require.NotNil(t, res.Student)
		assert.Equal(t, "S2", res.Student.StudentID)
		assert.Equal(t, "B", res.Student.Name)
	})

	t.Run("map without studentId is non-student data, not an error", func(t *testing.T) {
		payload := map[string]any{"classId": "CLS1", "courseCode": "CS101"}
		res, err := Parse(payload)
		require.NoError(t, err)
		assert.Nil(t, res.Student)
		assert.Equal(t, payload, res.Other)
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		_, err := Parse(42)
		assert.ErrorIs(t, err, ErrFormat)
	})
}
