// internal/services/providers.go
package services

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Provider keys as selected by the license form.
const (
	ProviderClaude  = "claude"
	ProviderGemini  = "gemini"
	ProviderChatGPT = "chatgpt"
)

// GatewayRoutes are the fixed paths the browser client always posted to.
var GatewayRoutes = map[string]string{
	ProviderClaude:  "/.netlify/functions/generate_license_claude",
	ProviderGemini:  "/.netlify/functions/generate_license_gemini",
	ProviderChatGPT: "/.netlify/functions/generate_license_chatgpt",
}

func IsKnownProvider(key string) bool {
	_, ok := GatewayRoutes[key]
	return ok
}

const (
	openAIBaseURL    = "https://api.openai.com"
	anthropicBaseURL = "https://api.anthropic.com"
	googleBaseURL    = "https://generativelanguage.googleapis.com"

	anthropicVersion = "2023-06-01"

	openAISystemPrompt = "You are a legal assistant that drafts clear and concise licensing agreements based on user-provided details."

	openAIPayload    = `{"model":"gpt-4o","messages":[{"role":"system","content":""},{"role":"user","content":""}],"max_tokens":800,"temperature":0.3}`
	anthropicPayload = `{"model":"claude-3-haiku-20240307","max_tokens":800,"temperature":0.2,"messages":[{"role":"user","content":""}]}`
	googlePayload    = `{"contents":[{"parts":[{"text":""}]}],"generationConfig":{"temperature":0.2,"maxOutputTokens":800}}`
)

// Provider is one upstream LLM API. Each implementation only knows how to
// shape its request and where its text lives in the reply; transport and
// error handling belong to GatewayService.
type Provider interface {
	// Key is the form-side selector, e.g. "claude".
	Key() string
	// CredentialName is the environment variable holding the API key.
	CredentialName() string
	NewRequest(ctx context.Context, apiKey, prompt string) (*http.Request, error)
	// ExtractText returns "" when the expected fields are absent.
	ExtractText(body []byte) string
}

type OpenAIProvider struct {
	baseURL string
}

func NewOpenAIProvider(baseURL string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return &OpenAIProvider{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *OpenAIProvider) Key() string            { return ProviderChatGPT }
func (p *OpenAIProvider) CredentialName() string { return "OPENAI_API_KEY" }

func (p *OpenAIProvider) NewRequest(ctx context.Context, apiKey, prompt string) (*http.Request, error) {
	payload, err := sjson.Set(openAIPayload, "messages.0.content", openAISystemPrompt)
	if err != nil {
		return nil, err
	}
	if payload, err = sjson.Set(payload, "messages.1.content", prompt); err != nil {
		return nil, err
	}

	req, err := newJSONRequest(ctx, p.baseURL+"/v1/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req, nil
}

func (p *OpenAIProvider) ExtractText(body []byte) string {
	return stringAt(body, "choices.0.message.content")
}

type AnthropicProvider struct {
	baseURL string
}

func NewAnthropicProvider(baseURL string) *AnthropicProvider {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicProvider{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *AnthropicProvider) Key() string            { return ProviderClaude }
func (p *AnthropicProvider) CredentialName() string { return "ANTHROPIC_API_KEY" }

func (p *AnthropicProvider) NewRequest(ctx context.Context, apiKey, prompt string) (*http.Request, error) {
	payload, err := sjson.Set(anthropicPayload, "messages.0.content", prompt)
	if err != nil {
		return nil, err
	}

	req, err := newJSONRequest(ctx, p.baseURL+"/v1/messages", payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}

func (p *AnthropicProvider) ExtractText(body []byte) string {
	return stringAt(body, "content.0.text")
}

type GoogleProvider struct {
	baseURL string
}

func NewGoogleProvider(baseURL string) *GoogleProvider {
	if baseURL == "" {
		baseURL = googleBaseURL
	}
	return &GoogleProvider{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *GoogleProvider) Key() string            { return ProviderGemini }
func (p *GoogleProvider) CredentialName() string { return "GOOGLE_API_KEY" }

func (p *GoogleProvider) NewRequest(ctx context.Context, apiKey, prompt string) (*http.Request, error) {
	payload, err := sjson.Set(googlePayload, "contents.0.parts.0.text", prompt)
	if err != nil {
		return nil, err
	}

	// Gemini takes the key as a query parameter.
	endpoint := p.baseURL + "/v1beta/models/gemini-pro:generateContent?key=" + url.QueryEscape(apiKey)
	return newJSONRequest(ctx, endpoint, payload)
}

// ExtractText joins the text of every part of the first candidate.
func (p *GoogleProvider) ExtractText(body []byte) string {
	parts := gjson.GetBytes(body, "candidates.0.content.parts")
	if !parts.IsArray() {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts.Array() {
		if text := part.Get("text"); text.Type == gjson.String {
			sb.WriteString(text.Str)
		}
	}
	return sb.String()
}

func newJSONRequest(ctx context.Context, endpoint, payload string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// stringAt reads a string at path, degrading to "" for anything else.
func stringAt(body []byte, path string) string {
	if value := gjson.GetBytes(body, path); value.Type == gjson.String {
		return value.Str
	}
	return ""
}
