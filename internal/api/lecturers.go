package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrattend/internal/auth"
	"qrattend/internal/catalog"
)

func (s *Server) listLecturers(c *gin.Context) {
	lecturers, err := s.catalog.ListLecturers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusOK, lecturers)
}

type lecturerRequest struct {
	LecturerID string `json:"lecturerId" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Department string `json:"department"`
}

func (s *Server) createLecturer(c *gin.Context) {
	var req lecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	lec, err := s.catalog.CreateLecturer(c.Request.Context(), catalog.Lecturer{
		LecturerID: req.LecturerID,
		Username:   req.Username,
		Name:       req.Name,
		Email:      req.Email,
		Password:   hash,
		Department: req.Department,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}
	c.JSON(http.StatusCreated, lec)
}
