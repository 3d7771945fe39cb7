// Package netutil classifies failures of outbound HTTP calls made by the bot:
// Telegram Bot API sends and requests to the content API.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Kind is a coarse failure category used as a metric label and log field.
type Kind string

const (
	KindNone     Kind = ""
	KindCanceled Kind = "cancelled"
	KindTimeout  Kind = "timeout"
	KindDNS      Kind = "dns"
	KindDial     Kind = "dial"
	KindReset    Kind = "reset"
	KindTLS      Kind = "tls"
	KindFlood    Kind = "flood"
	KindHTTP4xx  Kind = "http_4xx"
	KindHTTP5xx  Kind = "http_5xx"
	KindUnknown  Kind = "unknown"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// StatusCoder is implemented by API errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// Classify maps err onto a Kind. Wrapped url/net errors are unwrapped by errors.As.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindReset
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindDial
	}
	var alertErr tls.AlertError
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &alertErr) || errors.As(err, &certErr) {
		return KindTLS
	}

	status := HTTPStatus(err)
	switch {
	case status == http.StatusTooManyRequests:
		return KindFlood
	case status >= 500:
		return KindHTTP5xx
	case status >= 400:
		return KindHTTP4xx
	}
	return KindUnknown
}

// HTTPStatus extracts the status code carried by err, or 0 when there is none.
// Bot API errors that only survive as text keep the code in a trailing "(NNN)".
func HTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder.HTTPStatus()
	}

	msg := strings.TrimSpace(err.Error())
	if !strings.HasSuffix(msg, ")") {
		return 0
	}
	open := strings.LastIndex(msg, "(")
	if open < 0 {
		return 0
	}
	code, convErr := strconv.Atoi(msg[open+1 : len(msg)-1])
	if convErr != nil || code < 100 || code > 599 {
		return 0
	}
	return code
}

// RetryAfter returns the wait Telegram asked for on a flood error, or 0.
func RetryAfter(err error) time.Duration {
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) && floodErr.RetryAfter > 0 {
		return time.Duration(floodErr.RetryAfter) * time.Second
	}
	return 0
}

// Redact masks bot tokens embedded in request URLs before err reaches the logs.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
