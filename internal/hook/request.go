// Package hook builds and sends the HTTP callback fired for a detected launch.
package hook

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"launchhook/internal/placeholder"
)

// JSONContentType is attached to every request that carries a body
const JSONContentType = "application/json; charset=utf-8"

// RequestConfig is the caller-owned description of the callback. The core only
// ever sees copies of it.
type RequestConfig struct {
	URL          string
	Method       string
	APIKey       string
	HeaderBlock  string
	BodyTemplate string
}

// Header is a single parsed header line
type Header struct {
	Key   string
	Value string
}

// OutboundRequest is a fully rendered callback, ready to be sent
type OutboundRequest struct {
	Method  string
	URL     string
	Headers []Header
	Body    []byte
}

// Header returns the first value for key, compared case-insensitively
func (r *OutboundRequest) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, key) {
			return h.Value
		}
	}
	return ""
}

// HasBody reports whether a body will be attached
func (r *OutboundRequest) HasBody() bool {
	return len(r.Body) > 0
}

// ParseHeaderBlock turns raw "Key: Value" lines into headers. Lines are trimmed;
// blank lines and lines without a colon after the first character are skipped.
func ParseHeaderBlock(block string) []Header {
	var headers []Header
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		colon := strings.IndexByte(trimmed, ':')
		if colon <= 0 {
			continue
		}
		headers = append(headers, Header{
			Key:   strings.TrimSpace(trimmed[:colon]),
			Value: strings.TrimSpace(trimmed[colon+1:]),
		})
	}
	return headers
}

// Build renders cfg into an outbound request. {app} falls back to "unknown" and
// {timestamp} to the current time when ctx does not provide them. GET requests
// never carry a body.
func Build(cfg RequestConfig, ctx placeholder.Context) *OutboundRequest {
	values := ctx.Clone()
	if values[placeholder.KeyApp] == "" {
		values[placeholder.KeyApp] = placeholder.Unknown
	}
	if _, ok := values[placeholder.KeyTimestamp]; !ok {
		values[placeholder.KeyTimestamp] = placeholder.FormatTimestamp(time.Now())
	}

	req := &OutboundRequest{
		Method: cfg.Method,
		URL:    cfg.URL,
	}

	if cfg.APIKey != "" {
		req.Headers = append(req.Headers, Header{Key: "Authorization", Value: "Bearer " + cfg.APIKey})
	}
	req.Headers = append(req.Headers, ParseHeaderBlock(cfg.HeaderBlock)...)

	body := placeholder.Render(cfg.BodyTemplate, values)
	if body != "" && !strings.EqualFold(cfg.Method, http.MethodGet) {
		req.Body = []byte(body)
	}

	return req
}

// HTTPRequest converts r into a *http.Request bound to ctx
func (r *OutboundRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body *bytes.Reader
	if r.HasBody() {
		body = bytes.NewReader(r.Body)
	}

	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	}
	if err != nil {
		return nil, err
	}

	for _, h := range r.Headers {
		httpReq.Header.Add(h.Key, h.Value)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", JSONContentType)
	}

	return httpReq, nil
}
