// Package api exposes the lesson gateway, progress and tutor over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/config"
	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/progress"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the server routes to.
type Deps struct {
	Lessons  *lessons.Service
	Progress *progress.Service
	Tutor    *chat.Tutor
	Health   []Pinger
	Log      *logger.Logger
}

// Server is the HTTP API.
type Server struct {
	deps    Deps
	cfg     config.ServerConfig
	secret  []byte
	log     *logger.Logger
	metrics *Metrics
	engine  *gin.Engine
}

// New builds the router. Auth is enabled when jwtSecret is non-empty.
func New(deps Deps, cfg config.ServerConfig, jwtSecret string) *Server {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Mode != "" && gin.Mode() != gin.TestMode {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		deps:    deps,
		cfg:     cfg,
		secret:  []byte(jwtSecret),
		log:     log.With("component", "api"),
		metrics: NewMetrics(),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(recovery(s.log), requestID(), requestLogger(s.log), s.metrics.Middleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = []string{"Authorization", "Content-Type", "X-Requested-With", headerRequestID}
	corsCfg.ExposeHeaders = []string{headerRequestID}
	if len(s.cfg.AllowedOrigins) == 0 || (len(s.cfg.AllowedOrigins) == 1 && s.cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, CodeNotFound, "route not found")
	})

	r.GET("/healthz", s.health)
	r.GET("/metrics", s.metrics.Handler())

	v1 := r.Group("/api/v1")
	if s.cfg.RateLimit.RequestsPerSecond > 0 {
		rl := newRateLimiter(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst, s.metrics.rateLimitedHits.Inc)
		v1.Use(rl.middleware())
	}
	v1.GET("/lessons", s.listLessons)

	users := v1.Group("/users/:userId")
	chatGroup := v1.Group("/chat")
	if len(s.secret) > 0 {
		users.Use(authenticate(s.secret), sameUser())
		chatGroup.Use(authenticate(s.secret))
	}

	users.GET("/lessons/:lessonId/content", s.getLessonContent)
	users.DELETE("/lessons/:lessonId/content", s.clearLessonContent)
	users.POST("/lessons/:lessonId/quiz/regenerate", s.regenerateQuiz)
	users.POST("/lessons/:lessonId/quiz/submit", s.submitQuiz)
	users.POST("/lessons/:lessonId/complete", s.completeLesson)
	users.GET("/progress", s.getProgress)
	users.GET("/activities", s.listActivities)

	chatGroup.POST("", s.chatReply)

	return r
}

// Run serves on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if s.deps.Lessons != nil {
		s.deps.Lessons.Wait()
	}
	return nil
}
