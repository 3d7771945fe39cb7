package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("upstream http %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"cancelled", fmt.Errorf("send: %w", context.Canceled), KindCanceled},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.telegram.org"}, KindDNS},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", IsTimeout: true}, KindTimeout},
		{"dial", &url.Error{Op: "Post", URL: "x", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, KindDial},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, KindReset},
		{"short body", io.ErrUnexpectedEOF, KindReset},
		{"flood", tele.FloodError{RetryAfter: 3}, KindFlood},
		{"bot api 403", &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}, KindHTTP4xx},
		{"status coder", statusErr(502), KindHTTP5xx},
		{"code in text", errors.New("telegram: internal server error (500)"), KindHTTP5xx},
		{"opaque", errors.New("weird"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestHTTPStatusIgnoresNonCodes(t *testing.T) {
	assert.Zero(t, HTTPStatus(errors.New("see (docs)")))
	assert.Zero(t, HTTPStatus(errors.New("value (42)")))
	assert.Equal(t, 429, HTTPStatus(errors.New("Too Many Requests (429)")))
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.True(t, ShouldRetry(statusErr(503)))
	assert.True(t, ShouldRetry(tele.FloodError{RetryAfter: 1}))
	assert.False(t, ShouldRetry(&tele.Error{Code: 400}))
	assert.False(t, ShouldRetry(context.Canceled))
	assert.False(t, ShouldRetry(nil))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 3*time.Second, Backoff(tele.FloodError{RetryAfter: 3}, time.Second, 1))
	assert.Equal(t, 2*time.Second, Backoff(statusErr(500), time.Second, 2))
	assert.Equal(t, time.Second, Backoff(statusErr(500), time.Second, 0))
}

func TestRedact(t *testing.T) {
	msg := Redact(errors.New(`Post "https://api.telegram.org/bot123:ABC-def/sendMessage": EOF`))
	assert.NotContains(t, msg, "123:ABC-def")
	assert.Contains(t, msg, "bot<redacted>")
	assert.Empty(t, Redact(nil))
}
