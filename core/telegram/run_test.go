package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestDeleteWebhook(t *testing.T) {
	var gotPath, gotBody string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		return &http.Response{StatusCode: http.StatusOK, Status: "200 OK", Body: io.NopCloser(strings.NewReader(`{"ok":true}`))}, nil
	})}

	require.NoError(t, deleteWebhook(context.Background(), client, "123:abc", false))
	assert.Equal(t, "/bot123:abc/deleteWebhook", gotPath)
	assert.Equal(t, "drop_pending_updates=false", gotBody)

	assert.Error(t, deleteWebhook(context.Background(), client, " ", false))
}

func TestDeleteWebhookHidesToken(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	err := deleteWebhook(context.Background(), client, "123:secret", true)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")

	client.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized", Body: io.NopCloser(strings.NewReader(""))}, nil
	})
	err = deleteWebhook(context.Background(), client, "123:secret", false)
	assert.EqualError(t, err, "deleteWebhook: 401 Unauthorized")
}

func TestRunTelegramRequiresConfig(t *testing.T) {
	assert.Error(t, RunTelegram(context.Background(), RunOptions{}))
}
