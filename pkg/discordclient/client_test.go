package discordclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend_PostsContent(t *testing.T) {
	var (
		gotContentType string
		gotBody        map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())
	require.NoError(t, client.Send(context.Background(), "daily summary"))

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "daily summary", gotBody["content"])
	_, hasUsername := gotBody["username"]
	assert.False(t, hasUsername)
}

func TestSend_IncludesUsernameWhenConfigured(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "Report Bot", 5*time.Second, testLogger())
	require.NoError(t, client.Send(context.Background(), "daily summary"))

	assert.Equal(t, "Report Bot", gotBody["username"])
}

func TestSend_RejectedByWebhook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Cannot send an empty message"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())
	err := client.Send(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSend_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, "", 5*time.Second, testLogger())
	require.Error(t, client.Send(ctx, "daily summary"))
}
