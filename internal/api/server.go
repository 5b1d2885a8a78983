// Package api assembles the REST backend: authentication, the
// class/student/lecturer catalog, and attendance recording.
package api

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrattend/internal/attendance"
	"qrattend/internal/audit"
	"qrattend/internal/auth"
	"qrattend/internal/catalog"
	"qrattend/internal/config"
	"qrattend/internal/httpmiddleware"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) bool

// Server holds the handlers' dependencies.
type Server struct {
	cfg          config.App
	catalog      *catalog.Repository
	attendance   *attendance.Service
	audit        audit.Queue
	dbHealthy    HealthCheck
	redisHealthy HealthCheck
}

// New creates a server.
func New(cfg config.App, cat *catalog.Repository, att *attendance.Service, q audit.Queue, dbHealthy, redisHealthy HealthCheck) *Server {
	return &Server{
		cfg:          cfg,
		catalog:      cat,
		attendance:   att,
		audit:        q,
		dbHealthy:    dbHealthy,
		redisHealthy: redisHealthy,
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.Use(httpmiddleware.NewRateLimiter(s.cfg.RateLimitPerMin, s.cfg.RateLimitPerMin).Gin())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.health)

	r.POST("/api/auth/login", s.login)

	authed := r.Group("/api", auth.Bearer(s.cfg.JWTSigningKey, s.cfg.JWTIssuer))
	{
		authed.GET("/classes", s.listClasses)
		authed.GET("/classes/:id", s.getClass)
		authed.GET("/classes/lecturer/:lecturerId", s.listClassesByLecturer)
		authed.POST("/classes", s.createClass)
		authed.PUT("/classes/:id", s.updateClass)
		authed.DELETE("/classes/:id", s.deleteClass)
		authed.GET("/classes/:id/students", s.listEnrollments)
		authed.POST("/classes/:id/students", s.enrollStudent)

		authed.GET("/students", s.listStudents)
		authed.POST("/students", s.createStudent)
		authed.DELETE("/students/:id", s.deleteStudent)

		authed.GET("/lecturers", s.listLecturers)
		authed.POST("/lecturers", s.createLecturer)

		authed.POST("/attendance/record", s.recordAttendance)
		authed.GET("/attendance/class/:classId", s.listAttendance)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()
	db := s.dbHealthy(ctx)
	rds := s.redisHealthy(ctx)
	status := 200
	if !db || !rds {
		status = 503
	}
	c.JSON(status, gin.H{"status": "ok", "db": db, "redis": rds})
}

// publishAudit records an event without letting queue trouble fail the
// request.
func (s *Server) publishAudit(ctx context.Context, evt audit.Event) {
	evt.At = time.Now().UTC()
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.audit.Publish(pubCtx, evt); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}
