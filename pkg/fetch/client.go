// Package fetch implements the download core: the HTTP client capability,
// token-bucket throttle, retry/resume/multi-source orchestration, and
// conditional cache (spec.md §4.H–§4.L), grounded on pulith-fetch/src/{effects
// /http,rate/throttled,core/retry,fetch/resumable,fetch/multi_source,
// fetch/conditional}.rs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
)

// Client is the capability set the install core needs from a transport
// (spec.md §4.H): stream a response body and probe a resource's size
// without downloading it. Retry and range semantics are layered on top by
// the caller (§4.J), not the client itself.
type Client interface {
	Stream(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, *http.Response, error)
	Head(ctx context.Context, url string) (contentLength int64, ok bool, err error)
}

// HTTPClient is the production Client, built on retryablehttp with its own
// retry loop turned off: each call makes exactly one request, and every
// retry (spec.md §4.J backoff schedule) is left to the caller.
type HTTPClient struct {
	inner        *retryablehttp.Client
	maxRedirects int
}

// NewHTTPClient builds an HTTPClient. maxRedirects caps the redirect chain
// length before TooManyRedirects is returned; retryablehttp's own retry
// loop is disabled (RetryMax 0) since attempt-level retry belongs to §4.J.
func NewHTTPClient(maxRedirects int) *HTTPClient {
	inner := retryablehttp.NewClient()
	inner.Logger = nil
	inner.RetryMax = 0

	inner.HTTPClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return &pulitherr.TooManyRedirects{Limit: maxRedirects}
		}

		key := req.URL.String()
		for _, prev := range via {
			if prev.URL.String() == key {
				return &pulitherr.RedirectLoop{URL: key}
			}
		}

		return nil
	}

	return &HTTPClient{inner: inner, maxRedirects: maxRedirects}
}

// Stream opens a GET request and returns the response body as a stream,
// along with the response for the caller to inspect status/headers.
func (c *HTTPClient) Stream(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, *http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, &pulitherr.InvalidURL{URL: url}
	}

	applyHeaders(req.Request, headers)

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, nil, &pulitherr.Network{Msg: err.Error(), Err: err}
	}

	if resp.StatusCode >= 400 {
		body := resp.Body
		defer body.Close()

		return nil, resp, &pulitherr.HTTP{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return resp.Body, resp, nil
}

// Head queries Content-Length without downloading the body.
func (c *HTTPClient) Head(ctx context.Context, url string) (int64, bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, false, &pulitherr.InvalidURL{URL: url}
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return 0, false, &pulitherr.Network{Msg: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, false, &pulitherr.HTTP{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	header := resp.Header.Get("Content-Length")
	if header == "" {
		return 0, false, nil
	}

	n, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return 0, false, nil
	}

	return n, true, nil
}

func applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// ResponseError builds an HTTP error from a response's status; used by
// callers that already drained the body and need the typed error.
func ResponseError(resp *http.Response) error {
	return &pulitherr.HTTP{Status: resp.StatusCode, Message: fmt.Sprintf("%s", resp.Status)}
}
