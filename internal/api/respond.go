package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/nibble/internal/chat"
	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/progress"
)

// Stable error codes returned in the error envelope.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type dataEnvelope struct {
	Data any `json:"data"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dataEnvelope{Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Error: errorBody{Message: message, Code: code}})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, CodeBadRequest, message)
}

// failErr maps service errors onto HTTP responses.
func (s *Server) failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lessons.ErrMissingUser),
		errors.Is(err, lessons.ErrMissingLesson),
		errors.Is(err, progress.ErrMissingUser),
		errors.Is(err, progress.ErrMissingLesson),
		errors.Is(err, chat.ErrEmptyMessage):
		badRequest(c, err.Error())
	default:
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
