package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is one request seen by a RecordingServer
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// RecordingServer is an httptest server that remembers every request and
// answers with a fixed status and body.
type RecordingServer struct {
	*httptest.Server

	Status       int
	ResponseBody string

	requests []RecordedRequest
	notify   chan RecordedRequest
	mu       sync.Mutex
}

// NewRecordingServer starts a server answering 200 "ok". It is closed when the
// test ends.
func NewRecordingServer(t *testing.T) *RecordingServer {
	t.Helper()
	s := &RecordingServer{
		Status:       http.StatusOK,
		ResponseBody: "ok",
		notify:       make(chan RecordedRequest, 64),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *RecordingServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   string(body),
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	status, resp := s.Status, s.ResponseBody
	s.mu.Unlock()

	select {
	case s.notify <- rec:
	default:
	}

	w.WriteHeader(status)
	io.WriteString(w, resp)
}

// Requests returns a copy of everything received so far
func (s *RecordingServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Received is signalled once per request
func (s *RecordingServer) Received() <-chan RecordedRequest {
	return s.notify
}
