package llm

import (
	"context"
	"errors"
)

// CandidateProvider tries a list of providers in order. Rate limits,
// unavailability and timeouts move on to the next candidate; any other
// error is returned immediately.
type CandidateProvider struct {
	candidates []Provider
}

// WithCandidates chains primary with fallbacks. With no fallbacks the
// primary is returned unwrapped.
func WithCandidates(primary Provider, fallbacks ...Provider) Provider {
	if len(fallbacks) == 0 {
		return primary
	}
	all := make([]Provider, 0, len(fallbacks)+1)
	all = append(all, primary)
	all = append(all, fallbacks...)
	return &CandidateProvider{candidates: all}
}

func (c *CandidateProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for _, p := range c.candidates {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}
		if !IsFallbackTrigger(err) {
			return nil, err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate models configured")
	}
	return nil, lastErr
}

// ModelID returns the primary candidate's model.
func (c *CandidateProvider) ModelID() string {
	return c.candidates[0].ModelID()
}

// Models lists every candidate model in the order they are tried.
func (c *CandidateProvider) Models() []string {
	out := make([]string, len(c.candidates))
	for i, p := range c.candidates {
		out[i] = p.ModelID()
	}
	return out
}
