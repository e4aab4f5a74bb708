package chat

import "time"

// Config tunes the tutor.
type Config struct {
	// Timeout bounds a whole reply, compression included.
	Timeout time.Duration

	// MaxTurns is how many recent messages are sent verbatim. Older ones
	// are folded into a summary. Zero sends everything.
	MaxTurns int

	MaxTokens   int
	Temperature float64

	Summary CompressorConfig
}

func DefaultConfig() Config {
	return Config{
		Timeout:     time.Minute,
		MaxTurns:    12,
		MaxTokens:   512,
		Temperature: 0.7,
		Summary:     DefaultCompressorConfig(),
	}
}

// CompressorConfig tunes the history summarizer.
type CompressorConfig struct {
	MaxTokens   int
	Temperature float64
}

func DefaultCompressorConfig() CompressorConfig {
	return CompressorConfig{MaxTokens: 256, Temperature: 0.3}
}
