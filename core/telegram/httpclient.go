package telegram

import (
	"io"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/sholatbot/core/telegram/netutil"
)

// HTTPClientOptions tunes BuildHTTPClient. Zero durations take defaults;
// zero Retries fails fast.
type HTTPClientOptions struct {
	Timeout         time.Duration
	ResponseTimeout time.Duration
	Retries         int
	RetryBackoff    time.Duration
}

func (o HTTPClientOptions) withDefaults() HTTPClientOptions {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = 5 * time.Second
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	return o
}

// TelegramClientOptions are the settings used for Bot API calls.
func TelegramClientOptions() HTTPClientOptions {
	return HTTPClientOptions{Retries: 3}
}

// BuildHTTPClient returns a pooled client. With Retries > 0 transient network
// failures (see netutil.ShouldRetry) are retried with linear backoff.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	opts = opts.withDefaults()
	base := pooledTransport(opts.ResponseTimeout)

	client := &http.Client{Timeout: opts.Timeout, Transport: base}
	if opts.Retries > 0 {
		client.Transport = &retryTransport{base: base, retries: opts.Retries, backoff: opts.RetryBackoff}
	}
	return client
}

func pooledTransport(responseTimeout time.Duration) *http.Transport {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: responseTimeout,
		ExpectContinueTimeout: time.Second,
	}
}

type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries && netutil.ShouldRetry(err); attempt++ {
		body, ok := replayBody(req)
		if !ok {
			break
		}
		if werr := sleepCtx(req, netutil.Backoff(err, t.backoff, attempt)); werr != nil {
			return nil, werr
		}
		retry := req.Clone(req.Context())
		retry.Body = body
		resp, err = t.base.RoundTrip(retry)
	}
	return resp, err
}

// replayBody returns a fresh copy of the request body; ok is false when the
// body was already consumed and cannot be rebuilt.
func replayBody(req *http.Request) (io.ReadCloser, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return req.Body, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	return body, err == nil
}

func sleepCtx(req *http.Request, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
