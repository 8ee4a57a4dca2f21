package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocJSON = `{
  "title": "Impressum",
  "language": "de",
  "region": "DE",
  "sections": [{"heading": "Kontakt", "body": "E-Mail: a@acme.de"}],
  "missing_inputs": [],
  "warnings": []
}`

func chatReply(content string) string {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	raw, _ := json.Marshal(reply)
	return string(raw)
}

func TestOpenAIClient_Generate(t *testing.T) {
	var gotReq openAIChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(chatReply(sampleDocJSON)))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4-turbo-preview", server.URL)
	doc, err := client.Generate(context.Background(), "Erstelle ein Impressum.")
	require.NoError(t, err)

	assert.Equal(t, "Impressum", doc.Title)
	require.Len(t, doc.Sections, 1)

	assert.Equal(t, "gpt-4-turbo-preview", gotReq.Model)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "Erstelle ein Impressum.", gotReq.Messages[1].Content)
}

func TestOpenAIClient_MissingKeyIsUnavailable(t *testing.T) {
	client := NewOpenAIClient("", "gpt-4-turbo-preview", "")
	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAIClient_ServerErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4-turbo-preview", server.URL)
	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorContains(t, err, "429")
}

func TestOpenAIClient_UnreachableHostIsTransport(t *testing.T) {
	client := NewOpenAIClient("test-key", "gpt-4-turbo-preview", "http://127.0.0.1:1")
	_, err := client.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestOpenAIClient_MalformedReplies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty choices", `{"choices":[]}`},
		{"content not json", chatReply("Hier ist Ihr Impressum.")},
		{"missing title", chatReply(`{"language":"de","region":"DE","sections":[]}`)},
		{"missing sections", chatReply(`{"title":"Impressum","language":"de","region":"DE"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOpenAIClient("test-key", "gpt-4-turbo-preview", server.URL)
			_, err := client.Generate(context.Background(), "prompt")
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestOpenAIClient_AcceptsFencedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("```json\n" + sampleDocJSON + "\n```")))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4-turbo-preview", server.URL)
	doc, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Impressum", doc.Title)
}

func TestNewOpenAIClient_EndpointNormalization(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"", "https://api.openai.com/v1/chat/completions"},
		{"https://proxy.example.com", "https://proxy.example.com/v1/chat/completions"},
		{"https://proxy.example.com/v1", "https://proxy.example.com/v1/chat/completions"},
		{"https://proxy.example.com/v1/chat/completions", "https://proxy.example.com/v1/chat/completions"},
	}
	for _, tt := range tests {
		client := NewOpenAIClient("k", "m", tt.base)
		assert.Equal(t, tt.want, client.endpoint, tt.base)
	}
}
