package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is the OpenAI-compatible provider pointed at
// OpenRouter. Model IDs are vendor-prefixed ("google/gemini-2.0-flash-exp")
// and pass through without aliasing.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openrouter model is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	client := &http.Client{Transport: &attributionTransport{
		base:    http.DefaultTransport,
		siteURL: cfg.SiteURL,
		appName: cfg.AppName,
	}}
	inner := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, client)
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attributionTransport adds OpenRouter's optional app attribution headers.
type attributionTransport struct {
	base    http.RoundTripper
	siteURL string
	appName string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.siteURL == "" && t.appName == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.appName != "" {
		req.Header.Set("X-Title", t.appName)
	}
	return t.base.RoundTrip(req)
}
