package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrattend/internal/audit"
	"qrattend/internal/auth"
	"qrattend/internal/catalog"
)

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// login authenticates against students, lecturers, and admins in that
// order; the identifier may be a username, email, or studentId.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "identifier and password required"})
		return
	}
	ctx := c.Request.Context()

	var (
		userID, username, name, email, role, lecturerID string
		hash                                            string
		extra                                           gin.H
	)
	if st, err := s.catalog.FindStudentByIdentifier(ctx, req.Identifier); err == nil {
		userID, username, name, email = st.ID, st.Username, st.Name, st.Email
		role, hash = auth.RoleStudent, st.Password
		extra = gin.H{"studentId": st.StudentID, "yearLevel": st.YearLevel, "section": st.Section}
	} else if !errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	} else if lec, err := s.catalog.FindLecturerByIdentifier(ctx, req.Identifier); err == nil {
		userID, username, name, email = lec.ID, lec.Username, lec.Name, lec.Email
		role, hash, lecturerID = auth.RoleLecturer, lec.Password, lec.LecturerID
		extra = gin.H{"lecturerId": lec.LecturerID, "department": lec.Department}
	} else if !errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	} else if adm, err := s.catalog.FindAdminByIdentifier(ctx, req.Identifier); err == nil {
		userID, username, name, email = adm.ID, adm.Username, adm.Name, adm.Email
		role, hash = auth.RoleAdmin, adm.Password
		extra = gin.H{}
	} else if !errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "server error"})
		return
	}

	if role == "" || !auth.CheckPassword(hash, req.Password) {
		reason := "invalid_password"
		if role == "" {
			reason = "user_not_found"
		}
		s.publishAudit(ctx, audit.Event{
			Username: req.Identifier,
			Role:     "unknown",
			Action:   audit.ActionLoginFailed,
			Details:  map[string]any{"reason": reason},
		})
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, exp, err := auth.Issue(userID, username, role, lecturerID,
		s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token issue failed"})
		return
	}

	s.publishAudit(ctx, audit.Event{
		Username: username,
		Role:     role,
		Action:   audit.ActionLoginSuccess,
		Details:  map[string]any{"userId": userID, "name": name},
	})

	user := gin.H{"id": userID, "username": username, "name": name, "email": email, "role": role}
	for k, v := range extra {
		user[k] = v
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": exp.Unix(),
		"user":      user,
	})
}
