package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	return payload
}

func TestSend_TextMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		payload := decodePayload(t, r)
		assert.Equal(t, "12345", payload["chat_id"])
		assert.Equal(t, "hello", payload["text"])
		assert.Equal(t, "Markdown", payload["parse_mode"])
		assert.NotContains(t, payload, "photo")

		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))
	err := client.Send(context.Background(), Message{
		ChatID:    "12345",
		Text:      "hello",
		ParseMode: "Markdown",
	})
	require.NoError(t, err)
}

func TestSend_PhotoWithCaption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendPhoto", r.URL.Path)

		payload := decodePayload(t, r)
		assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", payload["photo"])
		assert.Equal(t, "*Heat* (1995)", payload["caption"])
		assert.NotContains(t, payload, "text")

		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))
	err := client.Send(context.Background(), Message{
		ChatID:    "12345",
		Text:      "*Heat* (1995)",
		ParseMode: "Markdown",
		PhotoURL:  "https://image.tmdb.org/t/p/w500/abc.jpg",
	})
	require.NoError(t, err)
}

func TestSend_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))
	err := client.Send(context.Background(), Message{ChatID: "0", Text: "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Contains(t, apiErr.Description, "chat not found")
}

func TestSend_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok": false, "error_code": 401, "description": "Unauthorized"}`))
	}))
	defer server.Close()

	client := New("bad-token", WithBaseURL(server.URL))
	err := client.Send(context.Background(), Message{ChatID: "12345", Text: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
