package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrattend/internal/auth"
	"qrattend/internal/catalog"
)

func (s *Server) listStudents(c *gin.Context) {
	students, err := s.catalog.ListStudents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, students)
}

type studentRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	YearLevel string `json:"yearLevel"`
	Section   string `json:"section"`
}

func (s *Server) createStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.YearLevel == "" {
		req.YearLevel = "1st Year"
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	st, err := s.catalog.CreateStudent(c.Request.Context(), catalog.Student{
		StudentID: req.StudentID,
		Username:  req.Username,
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		YearLevel: req.YearLevel,
		Section:   req.Section,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (s *Server) deleteStudent(c *gin.Context) {
	err := s.catalog.DeleteStudent(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}
