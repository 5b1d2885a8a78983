// Package scan turns raw QR payloads into validated student identities.
//
// Exactly one text format is accepted: studentId|name|email. Anything else
// is rejected outright rather than best-effort parsed, so a malformed or
// ad hoc code can never be misattributed to a student.
package scan

import (
	"errors"
	"regexp"
	"strings"
)

// ErrFormat is returned for text payloads that do not match the accepted
// pipe-delimited format. Callers surface it as a format error, distinct
// from system failures.
var ErrFormat = errors.New("scan: payload does not match studentId|name|email format")

// pipePattern requires exactly three non-empty pipe-separated fields.
var pipePattern = regexp.MustCompile(`^([^|]+)\|([^|]+)\|([^|]+)$`)

// StudentIdentity is the parsed identity carried by a student QR code.
type StudentIdentity struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Result is the outcome of parsing one payload. Exactly one of Student and
// Other is set: Other carries structured payloads that are well formed but
// not attendance data (no studentId), e.g. a class-selection code.
type Result struct {
	Student *StudentIdentity
	Other   map[string]any
}

// Parse classifies a raw scan payload.
//
// Text payloads have a leading byte-order mark and surrounding whitespace
// stripped, then must match the pipe-delimited format; there is no fallback
// to other encodings. Structured payloads are accepted as-is when they carry
// a non-empty studentId, and passed through as non-student data when they
// do not.
func Parse(payload any) (Result, error) {
	switch v := payload.(type) {
	case string:
		cleaned := strings.TrimSpace(strings.TrimPrefix(v, "\uFEFF"))
		m := pipePattern.FindStringSubmatch(cleaned)
		if m == nil {
			return Result{}, ErrFormat
		}
		return Result{Student: &StudentIdentity{StudentID: m[1], Name: m[2], Email: m[3]}}, nil

	case StudentIdentity:
		if v.StudentID == "" {
			return Result{Other: map[string]any{"name": v.Name, "email": v.Email}}, nil
		}
		return Result{Student: &v}, nil

	case *StudentIdentity:
		if v == nil {
			return Result{}, ErrFormat
		}
		return Parse(*v)

	case map[string]any:
		id, _ := v["studentId"].(string)
		if id == "" {
			return Result{Other: v}, nil
		}
		name, _ := v["name"].(string)
		email, _ := v["email"].(string)
		return Result{Student: &StudentIdentity{StudentID: id, Name: name, Email: email}}, nil

	default:
		return Result{}, ErrFormat
	}
}
