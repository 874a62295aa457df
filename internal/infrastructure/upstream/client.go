package upstream

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

	"planner-backend/internal/pkg/metrics"
	"planner-backend/internal/pkg/response"
	"planner-backend/internal/pkg/trace"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a store response is read; anything past it is dropped.
const maxBodyBytes = 1 << 20

type bearerKey struct{}

// WithBearer returns a context whose outbound requests carry "Authorization: Bearer <token>".
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// Client calls one downstream service over HTTP+JSON. Responses use the standard envelope and
// only the data field is decoded into out.
type Client struct {
	Name    string
	BaseURL string
	Client  *http.Client
}

// New returns a client for the service at baseURL with a fixed request timeout.
func New(name, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		Name:    name,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Ping calls GET /health and returns the round trip time.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, nil); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	start := time.Now()
	err := c.call(ctx, method, path, query, body, out)
	metrics.ObserveUpstream(c.Name, method, outcome(err), time.Since(start))
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if se, ok := AsStatus(err); ok {
		return strconv.Itoa(se.Status)
	}
	if errors.Is(err, ErrUnreachable) {
		return "unreachable"
	}
	return "invalid_response"
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: defaultTimeout}
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%s: base URL is not set: %w", c.Name, ErrUnreachable)
	}
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.Name, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := trace.From(ctx); id != "" {
		req.Header.Set(trace.Header, id)
	}
	if token, ok := ctx.Value(bearerKey{}).(string); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s %s: %w: %v", c.Name, method, path, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s %s: read body: %w: %v", c.Name, method, path, ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Service: c.Name, Status: resp.StatusCode, Body: respBody}
	}
	if out == nil {
		return nil
	}

	var env response.Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("%s: response decode: %w", c.Name, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%s: response has no data, body: %s", c.Name, string(respBody))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: data decode: %w", c.Name, err)
	}
	return nil
}
