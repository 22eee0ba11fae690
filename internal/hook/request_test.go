package hook_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchhook/internal/hook"
	"launchhook/internal/placeholder"
)

func TestParseHeaderBlock(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  []hook.Header
	}{
		{"simple", "X: Y", []hook.Header{{Key: "X", Value: "Y"}}},
		{"no colon", "X", nil},
		{"colon first", ": Y", nil},
		{"blank lines", "\n   \n\t\n", nil},
		{"trims key and value", "  X-Trace  :   abc  ", []hook.Header{{Key: "X-Trace", Value: "abc"}}},
		{"splits on first colon", "Link: http://a:8080/b", []hook.Header{{Key: "Link", Value: "http://a:8080/b"}}},
		{"empty value", "X-Empty:", []hook.Header{{Key: "X-Empty", Value: ""}}},
		{"crlf lines keep order", "A: 1\r\nskip\r\nB: 2\r\n", []hook.Header{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hook.ParseHeaderBlock(tt.block))
		})
	}
}

func TestBuildCopiesURLAndMethod(t *testing.T) {
	req := hook.Build(hook.RequestConfig{URL: "http://example.test/a?b=c", Method: "PATCH"}, nil)
	assert.Equal(t, "http://example.test/a?b=c", req.URL)
	assert.Equal(t, "PATCH", req.Method)
	assert.Empty(t, req.Headers)
}

func TestBuildAddsBearerToken(t *testing.T) {
	req := hook.Build(hook.RequestConfig{URL: "http://x", Method: "POST", APIKey: "abc123"}, nil)
	assert.Equal(t, "Bearer abc123", req.Header("Authorization"))

	req = hook.Build(hook.RequestConfig{URL: "http://x", Method: "POST"}, nil)
	assert.Empty(t, req.Header("Authorization"))
}

func TestBuildRendersBody(t *testing.T) {
	cfg := hook.RequestConfig{
		URL:          "http://localhost:9999/hook",
		Method:       "POST",
		BodyTemplate: `{"app":"{app}","at":"{timestamp}"}`,
	}
	ctx := placeholder.Context{placeholder.KeyApp: "notepad", placeholder.KeyTimestamp: "now"}

	req := hook.Build(cfg, ctx)
	assert.Equal(t, `{"app":"notepad","at":"now"}`, string(req.Body))

	// the caller's context is not modified
	assert.Len(t, ctx, 2)
}

func TestBuildFallsBackToUnknownApp(t *testing.T) {
	req := hook.Build(hook.RequestConfig{Method: "POST", BodyTemplate: "{app}"}, placeholder.Context{})
	assert.Equal(t, "unknown", string(req.Body))
}

func TestBuildFillsTimestamp(t *testing.T) {
	req := hook.Build(hook.RequestConfig{Method: "POST", BodyTemplate: "{timestamp}"}, nil)
	assert.NotEqual(t, "{timestamp}", string(req.Body))
	assert.NotEmpty(t, req.Body)
}

func TestBuildNeverAttachesBodyToGet(t *testing.T) {
	for _, method := range []string{"GET", "get"} {
		req := hook.Build(hook.RequestConfig{URL: "http://x", Method: method, BodyTemplate: `{"app":"{app}"}`}, nil)
		assert.False(t, req.HasBody(), method)

		httpReq, err := req.HTTPRequest(context.Background())
		require.NoError(t, err)
		assert.Empty(t, httpReq.Header.Get("Content-Type"))
		assert.Equal(t, int64(0), httpReq.ContentLength)
	}
}

func TestBuildSkipsEmptyBody(t *testing.T) {
	req := hook.Build(hook.RequestConfig{URL: "http://x", Method: "POST"}, nil)
	assert.False(t, req.HasBody())
}

func TestHTTPRequestCarriesJSONBody(t *testing.T) {
	cfg := hook.RequestConfig{
		URL:          "http://localhost:9999/hook",
		Method:       "POST",
		HeaderBlock:  "X-Source: launchhook\nContent-Type: text/plain",
		BodyTemplate: `{"app":"{app}"}`,
	}
	req := hook.Build(cfg, placeholder.Context{placeholder.KeyApp: "notepad"})

	httpReq, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "POST", httpReq.Method)
	assert.Equal(t, "launchhook", httpReq.Header.Get("X-Source"))
	assert.Equal(t, hook.JSONContentType, httpReq.Header.Get("Content-Type"))

	body, err := io.ReadAll(httpReq.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"app":"notepad"}`, string(body))
}

func TestHTTPRequestRejectsMalformedURL(t *testing.T) {
	req := hook.Build(hook.RequestConfig{URL: "http://[::1", Method: "POST"}, nil)
	_, err := req.HTTPRequest(context.Background())
	assert.Error(t, err)
}
