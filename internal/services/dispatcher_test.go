package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestHTTPDispatcherPostsToGatewayRoute(t *testing.T) {
	var gotPath, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotPath = r.URL.Path
		gotPrompt = gjson.GetBytes(body, "prompt").String()
		w.Write([]byte(`{"result":"AGREEMENT"}`))
	}))
	defer srv.Close()

	text, err := NewHTTPDispatcher(srv.URL+"/", srv.Client()).Dispatch(context.Background(), ProviderGemini, "draft \"this\"")
	require.NoError(t, err)
	assert.Equal(t, "AGREEMENT", text)
	assert.Equal(t, GatewayRoutes[ProviderGemini], gotPath)
	assert.Equal(t, "draft \"this\"", gotPrompt)
}

func TestHTTPDispatcherSurfacesGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Missing GOOGLE_API_KEY environment variable."}`))
	}))
	defer srv.Close()

	_, err := NewHTTPDispatcher(srv.URL, srv.Client()).Dispatch(context.Background(), ProviderGemini, "x")

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusInternalServerError, gwErr.Status)
	assert.Equal(t, "Missing GOOGLE_API_KEY environment variable.", gwErr.Message)
}

func TestHTTPDispatcherRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := NewHTTPDispatcher(srv.URL, srv.Client()).Dispatch(context.Background(), ProviderClaude, "x")
	assert.Error(t, err)
}

func TestHTTPDispatcherUnknownProvider(t *testing.T) {
	_, err := NewHTTPDispatcher("http://unused", nil).Dispatch(context.Background(), "llama", "x")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestLocalDispatcherUsesGateway(t *testing.T) {
	var calls atomic.Int32
	srv := fakeProviders(t, &calls)
	dispatcher := NewLocalDispatcher(NewGatewayService(fakeLLMConfig(srv.URL), srv.Client()))

	text, err := dispatcher.Dispatch(context.Background(), ProviderChatGPT, "hi")
	require.NoError(t, err)
	assert.Equal(t, "openai:hi", text)
	assert.Equal(t, int32(1), calls.Load())
}
