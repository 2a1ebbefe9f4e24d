package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/abhisek/coursekit/internal/envutil"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "azure", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Azure      AzureConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries. Expiry is
	// reported as ErrProviderUnavailable{Timeout: true}. Zero disables it.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// AzureConfig targets an Azure OpenAI deployment.
type AzureConfig struct {
	APIKey     string
	Endpoint   string // https://<resource>.openai.azure.com/
	Deployment string
	APIVersion string // Default: "2024-06-01"
}

// GeminiConfig selects the Gemini Developer API when APIKey is set and
// Vertex AI when Project and Location are set instead. Vertex AI
// authenticates with application default credentials.
type GeminiConfig struct {
	APIKey   string
	Project  string
	Location string // e.g. "us-central1"
	Model    string // Default: "gemini-flash"
}

func (c GeminiConfig) vertex() bool {
	return c.APIKey == "" && c.Project != "" && c.Location != ""
}

// OpenRouterConfig holds OpenRouter-specific configuration. SiteURL and
// AppName are sent as the attribution headers OpenRouter ranks apps by.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
	SiteURL string
	AppName string // Default: "coursekit"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "openai",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Azure:      AzureConfig{APIVersion: "2024-06-01"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp", AppName: "coursekit"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from COURSEKIT_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Provider = envutil.String("COURSEKIT_LLM_PROVIDER", cfg.Provider)
	cfg.Timeout = envutil.Duration("COURSEKIT_LLM_TIMEOUT", cfg.Timeout)
	cfg.Retry.MaxAttempts = envutil.Int("COURSEKIT_LLM_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)

	cfg.Anthropic.APIKey = os.Getenv("COURSEKIT_ANTHROPIC_API_KEY")
	cfg.Anthropic.Model = envutil.String("COURSEKIT_ANTHROPIC_MODEL", cfg.Anthropic.Model)

	cfg.OpenAI.APIKey = os.Getenv("COURSEKIT_OPENAI_API_KEY")
	cfg.OpenAI.Model = envutil.String("COURSEKIT_OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = os.Getenv("COURSEKIT_OPENAI_BASE_URL")

	cfg.Azure.APIKey = os.Getenv("COURSEKIT_AZURE_OPENAI_API_KEY")
	cfg.Azure.Endpoint = os.Getenv("COURSEKIT_AZURE_OPENAI_ENDPOINT")
	cfg.Azure.Deployment = os.Getenv("COURSEKIT_AZURE_OPENAI_DEPLOYMENT")
	cfg.Azure.APIVersion = envutil.String("COURSEKIT_AZURE_OPENAI_API_VERSION", cfg.Azure.APIVersion)

	cfg.Gemini.APIKey = os.Getenv("COURSEKIT_GEMINI_API_KEY")
	cfg.Gemini.Project = os.Getenv("COURSEKIT_GEMINI_PROJECT")
	cfg.Gemini.Location = os.Getenv("COURSEKIT_GEMINI_LOCATION")
	cfg.Gemini.Model = envutil.String("COURSEKIT_GEMINI_MODEL", cfg.Gemini.Model)

	cfg.OpenRouter.APIKey = os.Getenv("COURSEKIT_OPENROUTER_API_KEY")
	cfg.OpenRouter.Model = envutil.String("COURSEKIT_OPENROUTER_MODEL", cfg.OpenRouter.Model)
	cfg.OpenRouter.BaseURL = os.Getenv("COURSEKIT_OPENROUTER_BASE_URL")
	cfg.OpenRouter.SiteURL = os.Getenv("COURSEKIT_OPENROUTER_SITE_URL")
	cfg.OpenRouter.AppName = envutil.String("COURSEKIT_OPENROUTER_APP_NAME", cfg.OpenRouter.AppName)

	return cfg
}

// Validate checks that the selected provider has its required settings.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("COURSEKIT_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("COURSEKIT_OPENAI_API_KEY is required for the openai provider")
		}
	case "azure":
		if c.Azure.APIKey == "" || c.Azure.Endpoint == "" || c.Azure.Deployment == "" {
			return fmt.Errorf("COURSEKIT_AZURE_OPENAI_API_KEY, COURSEKIT_AZURE_OPENAI_ENDPOINT and COURSEKIT_AZURE_OPENAI_DEPLOYMENT are required for the azure provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" && !c.Gemini.vertex() {
			return fmt.Errorf("COURSEKIT_GEMINI_API_KEY, or COURSEKIT_GEMINI_PROJECT and COURSEKIT_GEMINI_LOCATION, are required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("COURSEKIT_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
