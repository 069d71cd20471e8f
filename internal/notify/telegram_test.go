package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramChannel_Send(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ch := NewTelegramChannel(srv.URL, "abc", "42", time.Second)
	require.NoError(t, ch.Send(context.Background(), "hello"))

	assert.Equal(t, "/botabc/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "hello", got.Text)
}

func TestTelegramChannel_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	ch := NewTelegramChannel(srv.URL, "abc", "42", time.Second)
	err := ch.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramChannel_MissingCredentials(t *testing.T) {
	ch := NewTelegramChannel("", "", "", 0)
	assert.Error(t, ch.Send(context.Background(), "hello"))
}
