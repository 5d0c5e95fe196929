package services

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOpenAIExtractText(t *testing.T) {
	p := NewOpenAIProvider("")

	cases := map[string]string{
		`{"choices":[{"message":{"content":"Agreement"}}]}`: "Agreement",
		`{"choices":[]}`:                                     "",
		`{"choices":[{"message":{}}]}`:                       "",
		`{"choices":[{"message":{"content":null}}]}`:         "",
		`{"error":{"message":"invalid api key"}}`:            "",
		`[]`:                                                 "",
	}
	for body, want := range cases {
		assert.Equal(t, want, p.ExtractText([]byte(body)), body)
	}
}

func TestAnthropicExtractText(t *testing.T) {
	p := NewAnthropicProvider("")

	cases := map[string]string{
		`{"content":[{"type":"text","text":"Agreement"},{"type":"text","text":"ignored"}]}`: "Agreement",
		`{"content":[]}`:          "",
		`{"content":[{"type":"text"}]}`: "",
		`{"type":"error","error":{"message":"overloaded"}}`: "",
	}
	for body, want := range cases {
		assert.Equal(t, want, p.ExtractText([]byte(body)), body)
	}
}

func TestGoogleExtractTextJoinsParts(t *testing.T) {
	p := NewGoogleProvider("")

	cases := map[string]string{
		`{"candidates":[{"content":{"parts":[{"text":"LICENSE "},{"text":"AGREEMENT"}]}}]}`: "LICENSE AGREEMENT",
		`{"candidates":[{"content":{"parts":[{"text":"a"},{},{"text":"b"}]}}]}`:             "ab",
		`{"candidates":[{"content":{}}]}`:                                                   "",
		`{"candidates":[]}`:                                                                 "",
		`{"promptFeedback":{"blockReason":"SAFETY"}}`:                                       "",
	}
	for body, want := range cases {
		assert.Equal(t, want, p.ExtractText([]byte(body)), body)
	}
}

func TestProviderRequests(t *testing.T) {
	ctx := context.Background()
	prompt := "Draft \"quoted\"\nlines"

	t.Run("openai", func(t *testing.T) {
		req, err := NewOpenAIProvider("http://fake/").NewRequest(ctx, "sk-test", prompt)
		require.NoError(t, err)
		assert.Equal(t, "http://fake/v1/chat/completions", req.URL.String())
		assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))

		body, _ := io.ReadAll(req.Body)
		assert.Equal(t, "gpt-4o", gjson.GetBytes(body, "model").String())
		assert.Equal(t, "system", gjson.GetBytes(body, "messages.0.role").String())
		assert.Equal(t, openAISystemPrompt, gjson.GetBytes(body, "messages.0.content").String())
		assert.Equal(t, prompt, gjson.GetBytes(body, "messages.1.content").String())
		assert.Equal(t, int64(800), gjson.GetBytes(body, "max_tokens").Int())
		assert.Equal(t, 0.3, gjson.GetBytes(body, "temperature").Float())
	})

	t.Run("anthropic", func(t *testing.T) {
		req, err := NewAnthropicProvider("http://fake").NewRequest(ctx, "ak-test", prompt)
		require.NoError(t, err)
		assert.Equal(t, "http://fake/v1/messages", req.URL.String())
		assert.Equal(t, "ak-test", req.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", req.Header.Get("anthropic-version"))

		body, _ := io.ReadAll(req.Body)
		assert.Equal(t, "claude-3-haiku-20240307", gjson.GetBytes(body, "model").String())
		assert.Equal(t, prompt, gjson.GetBytes(body, "messages.0.content").String())
		assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
		assert.Equal(t, 0.2, gjson.GetBytes(body, "temperature").Float())
	})

	t.Run("google", func(t *testing.T) {
		req, err := NewGoogleProvider("http://fake").NewRequest(ctx, "g key", prompt)
		require.NoError(t, err)
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", req.URL.Path)
		assert.Equal(t, "g key", req.URL.Query().Get("key"))

		body, _ := io.ReadAll(req.Body)
		assert.Equal(t, prompt, gjson.GetBytes(body, "contents.0.parts.0.text").String())
		assert.Equal(t, int64(800), gjson.GetBytes(body, "generationConfig.maxOutputTokens").Int())
	})
}

func TestKnownProviders(t *testing.T) {
	for _, key := range []string{ProviderClaude, ProviderGemini, ProviderChatGPT} {
		assert.True(t, IsKnownProvider(key), key)
	}
	assert.False(t, IsKnownProvider("llama"))
	assert.False(t, IsKnownProvider(""))
}
