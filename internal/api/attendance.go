package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"qrattend/internal/attendance"
	"qrattend/internal/audit"
	"qrattend/internal/auth"
)

// recordAttendance persists one scanned record. Replays of an already
// accepted uniqueId succeed without writing a second row, so a client that
// resubmits after a flaky response cannot double-mark a student.
func (s *Server) recordAttendance(c *gin.Context) {
	var rec attendance.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid attendance payload"})
		return
	}
	ctx := c.Request.Context()

	saved, inserted, err := s.attendance.Record(ctx, rec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if inserted {
		claims, _ := auth.ClaimsFrom(c)
		s.publishAudit(ctx, audit.Event{
			Username: claims.Username,
			Role:     claims.Role,
			Action:   audit.ActionAttendanceRecorded,
			Details: map[string]any{
				"studentId":  saved.StudentID,
				"courseCode": saved.CourseCode,
				"classId":    saved.ClassID,
				"uniqueId":   saved.UniqueID,
			},
		})
	}

	status := http.StatusCreated
	message := "Attendance recorded"
	if !inserted {
		status = http.StatusOK
		message = "Attendance already recorded"
	}
	c.JSON(status, gin.H{
		"message":  message,
		"uniqueId": saved.UniqueID,
		"date":     saved.Date,
		"status":   saved.Status,
	})
}

func (s *Server) listAttendance(c *gin.Context) {
	var day *time.Time
	if v := c.Query("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "date must be YYYY-MM-DD"})
			return
		}
		day = &parsed
	}
	limit, offset := 100, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	records, err := s.attendance.ListByClass(c.Request.Context(), c.Param("classId"), day, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "present": len(records)})
}
