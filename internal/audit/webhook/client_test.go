package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizon/backend/internal/audit"
)

func TestDeliver(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithIdentity("Test Bot", "https://example.com/a.png"))
	events := []audit.Event{
		audit.NewSecurityEvent(audit.RequestInfo{Method: "POST", Path: "/auth/login"}, "login"),
	}
	require.NoError(t, c.Deliver(context.Background(), events))

	assert.Equal(t, "Test Bot", got.Username)
	assert.Equal(t, "https://example.com/a.png", got.AvatarURL)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "🚨 Security Event - login", got.Embeds[0].Title)
}

func TestDeliverNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Deliver(context.Background(), []audit.Event{{Title: "x"}})
	assert.Error(t, err)
}

func TestDeliverEmptyURL(t *testing.T) {
	c := New("")
	assert.Error(t, c.Deliver(context.Background(), nil))
}

func TestDefaultIdentity(t *testing.T) {
	c := New("http://example.invalid")
	assert.Equal(t, defaultUsername, c.username)
}
