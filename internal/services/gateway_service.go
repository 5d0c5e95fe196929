// internal/services/gateway_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"

	"github.com/javajoker/ip-licensing-portal/internal/config"
)

var ErrUnknownProvider = errors.New("unknown provider")

// GatewayError is what a gateway route reports as {"error": Message}.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// GatewayService forwards a prompt to exactly one provider and normalises
// the reply to a single string. It holds no per-call state.
type GatewayService struct {
	providers   map[string]Provider
	credentials map[string]string
	breakers    map[string]*gobreaker.CircuitBreaker
	client      *http.Client
}

func NewGatewayService(cfg config.LLMConfig, client *http.Client) *GatewayService {
	if client == nil {
		client = &http.Client{}
	}

	providers := []Provider{
		NewAnthropicProvider(cfg.AnthropicBaseURL),
		NewGoogleProvider(cfg.GoogleBaseURL),
		NewOpenAIProvider(cfg.OpenAIBaseURL),
	}

	s := &GatewayService{
		providers: make(map[string]Provider, len(providers)),
		credentials: map[string]string{
			"OPENAI_API_KEY":    cfg.OpenAIAPIKey,
			"ANTHROPIC_API_KEY": cfg.AnthropicAPIKey,
			"GOOGLE_API_KEY":    cfg.GoogleAPIKey,
		},
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		client:   client,
	}
	for _, p := range providers {
		s.providers[p.Key()] = p
		if cfg.Breaker.ConsecutiveFailures > 0 {
			s.breakers[p.Key()] = newProviderBreaker(p.Key(), cfg.Breaker)
		}
	}
	return s
}

func newProviderBreaker(providerKey string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := uint32(cfg.ConsecutiveFailures)

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + providerKey,
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.OpenSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Provider circuit changed state")
		},
	})
}

// Invoke runs one gateway call for a raw request body. A missing, empty or
// malformed body means an empty prompt.
func (s *GatewayService) Invoke(ctx context.Context, providerKey string, body []byte) (string, error) {
	return s.Complete(ctx, providerKey, PromptFromBody(body))
}

func (s *GatewayService) Complete(ctx context.Context, providerKey, prompt string) (string, error) {
	provider, ok := s.providers[providerKey]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, providerKey)
	}

	apiKey := s.credentials[provider.CredentialName()]
	if apiKey == "" {
		return "", &GatewayError{
			Status:  http.StatusInternalServerError,
			Message: fmt.Sprintf("Missing %s environment variable.", provider.CredentialName()),
		}
	}

	logger := logrus.WithField("provider", providerKey)

	var reply providerReply
	err := s.guard(ctx, providerKey, func() error {
		var callErr error
		reply, callErr = s.roundTrip(ctx, provider, apiKey, prompt)
		return callErr
	})
	if err != nil {
		logger.WithError(err).Warn("Provider call failed")
		return "", err
	}

	result := provider.ExtractText(reply.body)
	logger.WithFields(logrus.Fields{
		"status": reply.status,
		"chars":  len(result),
	}).Debug("Provider call completed")

	return result, nil
}

type providerReply struct {
	status int
	body   []byte
}

// roundTrip sends one request. Status codes are not inspected: any JSON
// body is an answer and missing fields degrade to "".
func (s *GatewayService) roundTrip(ctx context.Context, provider Provider, apiKey, prompt string) (providerReply, error) {
	req, err := provider.NewRequest(ctx, apiKey, prompt)
	if err != nil {
		return providerReply{}, internalGatewayError(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return providerReply{}, internalGatewayError(redact(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providerReply{}, internalGatewayError(err)
	}
	if !gjson.ValidBytes(raw) {
		return providerReply{}, internalGatewayError(fmt.Errorf("invalid JSON in %s response (status %d)", provider.Key(), resp.StatusCode))
	}

	return providerReply{status: resp.StatusCode, body: raw}, nil
}

// guard runs fn through the provider's breaker, if it has one. A tripped
// breaker answers like any other gateway failure. Calls abandoned by the
// caller are not counted against the provider.
func (s *GatewayService) guard(ctx context.Context, providerKey string, fn func() error) error {
	breaker, ok := s.breakers[providerKey]
	if !ok {
		return fn()
	}
	if err := ctx.Err(); err != nil {
		return internalGatewayError(err)
	}

	var callErr error
	_, err := breaker.Execute(func() (interface{}, error) {
		callErr = fn()
		if callErr != nil && ctx.Err() != nil {
			return nil, nil
		}
		return nil, callErr
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return internalGatewayError(fmt.Errorf("%s is temporarily unavailable: %w", providerKey, err))
	}
	return callErr
}

// PromptFromBody reads the prompt field, defaulting to "" for absent or
// malformed bodies and for non-string values.
func PromptFromBody(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	if prompt := gjson.GetBytes(body, "prompt"); prompt.Type == gjson.String {
		return prompt.Str
	}
	return ""
}

func internalGatewayError(err error) *GatewayError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	if message == "" {
		message = "Unknown error"
	}
	return &GatewayError{Status: http.StatusInternalServerError, Message: message}
}

// redact drops the request URL from transport errors; the Gemini endpoint
// carries the API key in its query string.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
