package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

//go:generate mockgen -source=http_client.go -destination=mock_http_client.go -package=clients

const (
	timeout = time.Second * 15
	// maxBodySize bounds how much of an upstream reply is buffered.
	maxBodySize = 4 << 20
)

var ErrFailedCloseResponseBody = errors.New("failed close response body")

type HTTPClientI interface {
	Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error)
}

type HTTPClient struct {
	client  *http.Client
	headers http.Header
}

// NewHTTPClient returns a client that adds defaultHeaders to every request.
func NewHTTPClient(defaultHeaders http.Header) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		headers: defaultHeaders.Clone(),
	}
}

func (h *HTTPClient) Get(ctx context.Context, url string, headers http.Header) (statusCode int, respBody []byte, respHeaders http.Header, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return
	}

	for k, v := range h.headers {
		req.Header[k] = v
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return
	}

	defer func() {
		if e := resp.Body.Close(); e != nil {
			err = errors.Join(err, ErrFailedCloseResponseBody)
		}
	}()

	respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return
	}
	statusCode = resp.StatusCode
	respHeaders = resp.Header

	return
}
