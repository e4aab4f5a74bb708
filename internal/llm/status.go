package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopFiltered  = "filtered"
)

// statusError maps a backend HTTP status onto the error taxonomy.
func statusError(status int, retryAfter time.Duration, err error) error {
	switch status {
	case http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ErrAuth{StatusCode: status, Err: err}
	}
	return &ErrProviderUnavailable{StatusCode: status, Err: err}
}

// checkStop turns a truncated or filtered completion into an error. A
// truncated structured response cannot be valid JSON, and a filtered one
// with no text has nothing to normalize.
func checkStop(req Request, stop string, content []byte) error {
	switch stop {
	case StopMaxTokens:
		if req.Schema != nil {
			return &ErrMaxTokensExceeded{Content: content}
		}
	case StopFiltered:
		if len(strings.TrimSpace(string(content))) == 0 {
			return &ErrInvalidResponse{Err: fmt.Errorf("response blocked by content filter")}
		}
	}
	return nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func retryAfterFrom(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	return parseRetryAfter(resp.Header.Get("Retry-After"))
}
