package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrattend/internal/audit"
	"qrattend/internal/auth"
	"qrattend/internal/catalog"
)

func (s *Server) listClasses(c *gin.Context) {
	classes, err := s.catalog.ListClasses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, classes)
}

func (s *Server) getClass(c *gin.Context) {
	cls, err := s.catalog.GetClass(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Class not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, cls)
}

func (s *Server) listClassesByLecturer(c *gin.Context) {
	ctx := c.Request.Context()
	lec, err := s.catalog.GetLecturerByAnyID(ctx, c.Param("lecturerId"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Lecturer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	classes, err := s.catalog.ListClassesByLecturer(ctx, lec.LecturerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, classes)
}

type classRequest struct {
	CourseCode string `json:"courseCode" binding:"required"`
	CourseName string `json:"courseName" binding:"required"`
	Section    string `json:"section" binding:"required"`
	Room       string `json:"room" binding:"required"`
	Schedule   string `json:"schedule" binding:"required"`
	LecturerID string `json:"lecturerId"`
}

func (s *Server) createClass(c *gin.Context) {
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields"})
		return
	}
	if req.LecturerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields"})
		return
	}
	ctx := c.Request.Context()

	lec, err := s.catalog.GetLecturerByAnyID(ctx, req.LecturerID)
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Lecturer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}

	cls, err := s.catalog.CreateClass(ctx, catalog.Class{
		CourseCode: req.CourseCode,
		CourseName: req.CourseName,
		Section:    req.Section,
		Room:       req.Room,
		Schedule:   req.Schedule,
		LecturerID: lec.LecturerID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusCreated, cls)
}

func (s *Server) updateClass(c *gin.Context) {
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields"})
		return
	}
	cls, err := s.catalog.UpdateClass(c.Request.Context(), catalog.Class{
		ID:         c.Param("id"),
		CourseCode: req.CourseCode,
		CourseName: req.CourseName,
		Section:    req.Section,
		Room:       req.Room,
		Schedule:   req.Schedule,
	})
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Class not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, cls)
}

// deleteClass removes a class and everything hanging off it in one
// transaction. Only an admin or the owning lecturer may delete.
func (s *Server) deleteClass(c *gin.Context) {
	ctx := c.Request.Context()
	claims, _ := auth.ClaimsFrom(c)

	cls, err := s.catalog.GetClass(ctx, c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Class not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}

	if claims.Role != auth.RoleAdmin && cls.LecturerID != claims.LecturerID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this class"})
		return
	}

	res, err := s.catalog.DeleteClassCascade(ctx, cls.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}

	s.publishAudit(ctx, audit.Event{
		Username: claims.Username,
		Role:     claims.Role,
		Action:   audit.ActionClassDeleted + "_" + cls.CourseCode,
		Details: map[string]any{
			"classId":            cls.ID,
			"courseCode":         cls.CourseCode,
			"attendanceDeleted":  res.AttendanceDeleted,
			"enrollmentsDeleted": res.EnrollmentsDeleted,
		},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Class deleted", "deleted": res})
}

func (s *Server) listEnrollments(c *gin.Context) {
	enrollments, err := s.catalog.ListEnrollments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

type enrollRequest struct {
	StudentID   string `json:"studentId" binding:"required"`
	StudentName string `json:"studentName" binding:"required"`
	YearLevel   string `json:"yearLevel"`
	Section     string `json:"section"`
}

func (s *Server) enrollStudent(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "studentId and studentName required"})
		return
	}
	if req.YearLevel == "" {
		req.YearLevel = "1st Year"
	}
	err := s.catalog.EnrollStudent(c.Request.Context(), catalog.Enrollment{
		ClassID:     c.Param("id"),
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		YearLevel:   req.YearLevel,
		Section:     req.Section,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Student enrolled"})
}
