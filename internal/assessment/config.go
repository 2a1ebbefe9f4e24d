package assessment

// Config controls the behavior of the Supplier.
type Config struct {
	// MaxCourseChars bounds the course text prefix sent to the LLM.
	MaxCourseChars int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxCourseChars: 4000,
		MaxTokens:      1500,
		Temperature:    0.3,
	}
}
