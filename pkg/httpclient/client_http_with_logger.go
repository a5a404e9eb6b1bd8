package httpclient

import (
	"net/http"
	"time"

	"github.com/IsaacDSC/kvcache/pkg/ctxlogger"
)

const DefaultTimeout = 30 * time.Second

// LoggingTransport logs every request with the logger found on the
// request context. Bodies are not read; page responses can be large.
type LoggingTransport struct {
	Transport http.RoundTripper
}

func NewLoggingTransport(transport http.RoundTripper) *LoggingTransport {
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &LoggingTransport{Transport: transport}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := ctxlogger.GetLogger(req.Context())

	logger.Debug("HTTP client request started",
		"method", req.Method,
		"url", req.URL.String(),
	)

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("HTTP client request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"error", err.Error(),
			"elapsed_time", elapsed,
		)
		return nil, err
	}

	logger.Info("HTTP client request completed",
		"method", req.Method,
		"url", req.URL.String(),
		"status_code", resp.StatusCode,
		"content_length", resp.ContentLength,
		"elapsed_time", elapsed,
	)

	return resp, nil
}

// NewHTTPClientWithLogging builds a client that logs through the request
// context. A non-positive timeout selects DefaultTimeout.
func NewHTTPClientWithLogging(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: NewLoggingTransport(nil),
		Timeout:   timeout,
	}
}
