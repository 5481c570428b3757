// Package apiclient is the typed client for the invoicing REST backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"invoicely/internal/core/apperror"
	appctx "invoicely/internal/core/context"
	"invoicely/pkg/logger"
)

var tracer = otel.Tracer("invoicely/apiclient")

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// ServiceToken is sent when the request context carries no user session,
	// as in the background worker.
	ServiceToken string

	// HTTPClient replaces the default client. Its transport is used as is.
	HTTPClient *http.Client
}

// Client talks to the backend. Every call is a single request; nothing is
// retried.
type Client struct {
	baseURL      *url.URL
	serviceToken string
	http         *http.Client
}

// New creates a client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend base url is empty")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base url must be http or https: %q", raw)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: gzhttp.Transport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL:      base,
		serviceToken: strings.TrimSpace(cfg.ServiceToken),
		http:         hc,
	}, nil
}

// BaseURL returns the backend root the client resolves paths against.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// resolve turns an API path relative to the base URL, or a "next" link, into
// a URL. Links with a leading slash are host-relative, as the backend's
// paginator may emit them; client paths never start with one.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if u.Host != c.baseURL.Host {
		return "", fmt.Errorf("refusing to follow link to another host: %s", u.Host)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// do sends one request. A non-nil body is sent as JSON and a non-nil out
// receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := tracer.Start(ctx, "backend "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()

	endpoint, err := c.resolve(path, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad url")
		return apperror.NewInternal(err)
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := appctx.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		logger.Warn(ctx, "backend unreachable", "method", method, "path", path, "error", err)
		return apperror.NewUnavailable(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	logger.Debug(ctx, "backend call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		appErr := decodeError(resp.StatusCode, raw)
		span.SetStatus(codes.Error, appErr.Message)
		return appErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode response")
		return apperror.NewUpstream(resp.StatusCode, "").WithCause(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if t := appctx.GetAccessToken(ctx); t != "" {
		return t
	}
	return c.serviceToken
}

// errorBody is the backend's error envelope. Which key is set depends on the
// endpoint.
type errorBody struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// decodeError maps a failed response to an AppError carrying the backend's
// message from "error" or "detail", or the generic fallback.
func decodeError(status int, raw []byte) *apperror.AppError {
	var body errorBody
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = firstMessage(body.Error)
		if msg == "" {
			msg = firstMessage(body.Detail)
		}
	}
	appErr := apperror.NewUpstream(status, msg)
	if status == http.StatusUnauthorized {
		appErr = apperror.NewUnauthorized(fallback(msg, "Session expired, please sign in again"))
	}
	return appErr
}

// firstMessage reads a string, or the first string of an array.
func firstMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
