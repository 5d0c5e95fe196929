// internal/services/dispatcher.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Dispatcher delivers a prompt to the gateway route of one provider and
// returns the generated text.
type Dispatcher interface {
	Dispatch(ctx context.Context, providerKey, prompt string) (string, error)
}

// LocalDispatcher calls the gateway in-process.
type LocalDispatcher struct {
	gateway *GatewayService
}

func NewLocalDispatcher(gateway *GatewayService) *LocalDispatcher {
	return &LocalDispatcher{gateway: gateway}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, providerKey, prompt string) (string, error) {
	return d.gateway.Complete(ctx, providerKey, prompt)
}

// HTTPDispatcher posts {"prompt": ...} to the public gateway routes, the
// same way the browser client does.
type HTTPDispatcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDispatcher(baseURL string, client *http.Client) *HTTPDispatcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPDispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, providerKey, prompt string) (string, error) {
	route, ok := GatewayRoutes[providerKey]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, providerKey)
	}

	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}

	req, err := newJSONRequest(ctx, d.baseURL+route, string(body))
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gateway response: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("gateway returned non-JSON body (status %d)", resp.StatusCode)
	}
	if msg := gjson.GetBytes(raw, "error"); msg.Exists() {
		return "", &GatewayError{Status: resp.StatusCode, Message: msg.String()}
	}

	return stringAt(raw, "result"), nil
}
