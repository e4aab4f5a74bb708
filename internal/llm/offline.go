package llm

import "context"

// OfflineProvider fails every call with ErrProviderUnavailable. It stands
// in when no backend is configured so callers take their fallback paths.
type OfflineProvider struct {
	reason error
}

// Offline returns a provider that is never available. reason is reported
// in every error.
func Offline(reason error) *OfflineProvider {
	return &OfflineProvider{reason: reason}
}

func (o *OfflineProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: o.reason}
}

func (o *OfflineProvider) ModelID() string {
	return "offline"
}
