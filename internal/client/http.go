package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// ErrStatus is the cause of every StatusError.
var ErrStatus = errors.New("unexpected status")

// StatusError reports a non-2xx response. The full result is kept so callers
// can print the status and body.
type StatusError struct {
	Method string
	Path   string
	Result *Result
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Result.Status, e.Result.StatusText)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// HTTPClient makes REST calls to the simulation backend.
type HTTPClient struct {
	baseURL  string
	apiKey   string
	distrKey string
	product  string
	client   *http.Client
}

type Option func(*HTTPClient)

// WithKeys sets the API key (admin operations) and the distribution key
// (player creation and stream events).
func WithKeys(apiKey, distrKey string) Option {
	return func(c *HTTPClient) {
		c.apiKey = apiKey
		c.distrKey = distrKey
	}
}

// WithProduct sends a product header on every request.
func WithProduct(product string) Option {
	return func(c *HTTPClient) { c.product = product }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.client.Timeout = d }
}

// NewHTTPClient creates a client targeting the given base URL (e.g.
// "https://n10s.net"). A trailing slash is ignored.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised base URL.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// Request describes one API call. Body is JSON-encoded when non-nil. List
// marks endpoints whose empty body means an empty array.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   interface{}
	List   bool
}

// Result is a completed response, successful or not.
type Result struct {
	Status     int
	StatusText string
	// Body is the parsed JSON body, or the raw text when it is not JSON.
	Body    interface{}
	Raw     []byte
	Elapsed time.Duration
	// DecodeErr is set when a 2xx body did not fit the typed entity. The
	// call still succeeds; Body holds what the server sent.
	DecodeErr error
}

// OK reports a 2xx status.
func (r *Result) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Do sends req and reads the whole response. A non-2xx status returns the
// result together with a *StatusError.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Result, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, eris.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if c.product != "" {
		httpReq.Header.Set("Product", c.product)
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("X-Request-Id", reqID)

	log.Debug().Str("method", req.Method).Str("url", target).Str("request_id", reqID).Msg("http request")

	t0 := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, eris.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(t0)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s %s response", req.Method, req.Path)
	}

	res := &Result{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Body:       ParseBody(raw, req.List),
		Raw:        raw,
		Elapsed:    elapsed,
	}
	log.Debug().Int("status", res.Status).Dur("elapsed", elapsed).Str("request_id", reqID).Msg("http response")

	if !res.OK() {
		return res, &StatusError{Method: req.Method, Path: req.Path, Result: res}
	}
	return res, nil
}

// ParseBody decodes a JSON body. An empty body yields an empty object, or an
// empty array when list is set; invalid JSON yields the raw text.
func ParseBody(raw []byte, list bool) interface{} {
	if len(bytes.TrimSpace(raw)) == 0 {
		if list {
			return []interface{}{}
		}
		return map[string]interface{}{}
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// decode fills out from a successful result. An empty body leaves out
// untouched. A body that does not fit out is recorded on res rather than
// failing the call.
func decode(res *Result, out interface{}) {
	if len(bytes.TrimSpace(res.Raw)) == 0 {
		return
	}
	if err := json.Unmarshal(res.Raw, out); err != nil {
		res.DecodeErr = eris.Wrap(err, "decode response body")
		log.Debug().Err(err).Int("status", res.Status).Msg("response body does not match entity")
	}
}

// pathSegment escapes an id for use as a single path segment.
func pathSegment(id string) string {
	return url.PathEscape(id)
}
