package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/llm"
)

const maxActivityLimit = 50

func (s *Server) health(c *gin.Context) {
	for _, p := range s.deps.Health {
		if err := p.Ping(c.Request.Context()); err != nil {
			s.log.Warn("health check failed", "error", err)
			fail(c, http.StatusServiceUnavailable, CodeInternal, "store unavailable")
			return
		}
	}
	ok(c, gin.H{"status": "ok"})
}

func (s *Server) listLessons(c *gin.Context) {
	ok(c, lessons.Catalog())
}

func (s *Server) getLessonContent(c *gin.Context) {
	regenerate, err := parseBool(c.Query("regenerate"))
	if err != nil {
		badRequest(c, "regenerate must be a boolean")
		return
	}
	opts := lessons.Options{
		Title:      c.Query("title"),
		Subtitle:   c.Query("subtitle"),
		Tone:       c.Query("tone"),
		Difficulty: c.Query("difficulty"),
		Regenerate: regenerate,
	}

	res, err := s.deps.Lessons.Generate(s.llmContext(c), c.Param("userId"), c.Param("lessonId"), opts)
	if err != nil {
		s.failErr(c, err)
		return
	}
	s.metrics.observeLesson(res.Cached, res.FromFallback)
	ok(c, res)
}

func (s *Server) clearLessonContent(c *gin.Context) {
	if err := s.deps.Lessons.Clear(c.Request.Context(), c.Param("userId"), c.Param("lessonId")); err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, gin.H{"cleared": true})
}

func (s *Server) regenerateQuiz(c *gin.Context) {
	res, err := s.deps.Lessons.RegenerateQuiz(s.llmContext(c), c.Param("userId"), c.Param("lessonId"))
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, res)
}

type submitQuizRequest struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

func (s *Server) submitQuiz(c *gin.Context) {
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"answers\": {\"<question index>\": <option index>}}")
		return
	}
	answers := make(map[int]int, len(req.Answers))
	for k, v := range req.Answers {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			badRequest(c, "answer keys must be question indexes")
			return
		}
		answers[idx] = v
	}

	out, err := s.deps.Progress.RecordQuiz(s.llmContext(c), c.Param("userId"), c.Param("lessonId"), answers)
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, out)
}

func (s *Server) completeLesson(c *gin.Context) {
	p, err := s.deps.Progress.MarkLessonComplete(s.llmContext(c), c.Param("userId"), c.Param("lessonId"))
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, p)
}

func (s *Server) getProgress(c *gin.Context) {
	sum, err := s.deps.Progress.Summary(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, sum)
}

func (s *Server) listActivities(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}
	acts, err := s.deps.Progress.RecentActivities(c.Request.Context(), c.Param("userId"), limit)
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, acts)
}

type chatRequest struct {
	Message string      `json:"message"`
	History []chat.Turn `json:"history"`
}

func (s *Server) chatReply(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"message\": string, \"history\": [...]}")
		return
	}
	reply, err := s.deps.Tutor.Reply(s.llmContext(c), req.History, req.Message)
	if err != nil {
		s.failErr(c, err)
		return
	}
	s.metrics.observeChat(reply.FromFallback)
	ok(c, reply)
}

// llmContext tags model calls made for this request with the user.
func (s *Server) llmContext(c *gin.Context) context.Context {
	user := c.Param("userId")
	if user == "" {
		user = c.GetString(ctxSubject)
	}
	return llm.WithUser(c.Request.Context(), user)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
