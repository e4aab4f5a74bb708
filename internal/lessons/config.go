package lessons

// Config tunes the model calls behind lesson and quiz generation.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Quiz calls fall back to the lesson values when these are zero. Quizzes
	// run cooler so the answer key stays consistent with the lesson text.
	QuizMaxTokens   int
	QuizTemperature float64

	// StructuredOutput attaches the JSON schema to requests. Free-text
	// backends ignore it.
	StructuredOutput bool
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:       1024,
		Temperature:     0.6,
		QuizMaxTokens:   768,
		QuizTemperature: 0.3,
	}
}

func (c Config) quizParams() (maxTokens int, temperature float64) {
	maxTokens, temperature = c.QuizMaxTokens, c.QuizTemperature
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	if temperature <= 0 {
		temperature = c.Temperature
	}
	return maxTokens, temperature
}
