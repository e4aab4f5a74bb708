package llm

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestStatusError(t *testing.T) {
	cause := errors.New("upstream said no")

	var rl *ErrRateLimit
	err := statusError(http.StatusTooManyRequests, 2*time.Second, cause)
	if !errors.As(err, &rl) || rl.RetryAfter != 2*time.Second {
		t.Fatalf("429: got %T (%v)", err, err)
	}

	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var auth *ErrAuth
		err := statusError(code, 0, cause)
		if !errors.As(err, &auth) || auth.StatusCode != code {
			t.Fatalf("%d: got %T (%v)", code, err, err)
		}
		if IsFallbackTrigger(err) {
			t.Errorf("%d should not trigger fallback", code)
		}
		if !errors.Is(err, cause) {
			t.Errorf("%d: cause not wrapped", code)
		}
	}

	var un *ErrProviderUnavailable
	err = statusError(http.StatusBadGateway, 0, cause)
	if !errors.As(err, &un) || un.StatusCode != http.StatusBadGateway {
		t.Fatalf("502: got %T (%v)", err, err)
	}
}

func TestCheckStop(t *testing.T) {
	structured := Request{Schema: &Schema{Name: "lesson"}}
	text := []byte(`{"title":"Fib`)

	var maxTok *ErrMaxTokensExceeded
	if err := checkStop(structured, StopMaxTokens, text); !errors.As(err, &maxTok) {
		t.Fatalf("structured truncation: got %v", err)
	} else if string(maxTok.Content) != string(text) {
		t.Errorf("content not preserved: %s", maxTok.Content)
	}

	if err := checkStop(Request{}, StopMaxTokens, text); err != nil {
		t.Errorf("free-text truncation should pass through, got %v", err)
	}

	var inv *ErrInvalidResponse
	if err := checkStop(Request{}, StopFiltered, []byte("  \n")); !errors.As(err, &inv) {
		t.Errorf("empty filtered response: got %v", err)
	}
	if err := checkStop(Request{}, StopFiltered, []byte("partial answer")); err != nil {
		t.Errorf("filtered response with text should pass, got %v", err)
	}
	if err := checkStop(structured, StopEnd, []byte(`{}`)); err != nil {
		t.Errorf("normal stop: got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":                              0,
		"5":                             5 * time.Second,
		" 12 ":                          12 * time.Second,
		"0":                             0,
		"-3":                            0,
		"Wed, 21 Oct 2026 07:28:00 GMT": 0,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}

	if retryAfterFrom(nil) != 0 {
		t.Error("nil response should give zero")
	}
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"7"}}}
	if got := retryAfterFrom(resp); got != 7*time.Second {
		t.Errorf("retryAfterFrom = %v", got)
	}
}
