package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"channelhub/domain/model"

	"github.com/google/go-querystring/query"
)

const maxErrorBody = 2048

// Client is the shared REST client for platform adapters. It encodes query
// structs, decodes JSON bodies and maps non-2xx responses to UpstreamError so
// the retry policy can classify them.
type Client struct {
	http     *http.Client
	platform string
}

func New(platform string) *Client {
	return &Client{http: http.DefaultClient, platform: platform}
}

// NewWithClient wraps a caller-provided *http.Client, e.g. an oauth2
// token-refreshing client.
func NewWithClient(platform string, hc *http.Client) *Client {
	return &Client{http: hc, platform: platform}
}

// Request describes one outbound call. Query may be a struct with `url` tags
// (encoded via go-querystring) or url.Values. Form takes precedence over Body
// and is sent urlencoded.
type Request struct {
	Method  string
	URL     string
	Query   any
	Headers map[string]string
	Body    any
	Form    url.Values
}

// DoJSON performs the request and decodes a 2xx response body into out
// (out may be nil).
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	target := req.URL
	if req.Query != nil {
		values, err := encodeQuery(req.Query)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		if enc := values.Encode(); enc != "" {
			target = target + "?" + enc
		}
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &model.UpstreamError{
			Platform: c.platform,
			Status:   resp.StatusCode,
			Body:     string(raw),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.platform, err)
	}
	return nil
}

func encodeQuery(q any) (url.Values, error) {
	if values, ok := q.(url.Values); ok {
		return values, nil
	}
	return query.Values(q)
}
