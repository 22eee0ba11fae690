package hook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	apperrors "launchhook/internal/errors"
	"launchhook/internal/logging"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the outcome of one callback. Non-2xx responses are results, not errors.
type Result struct {
	StatusCode int
	Status     string
	Body       string
	Duration   time.Duration
}

// Summary renders the result the way it is shown on the status surface
func (r *Result) Summary() string {
	return fmt.Sprintf("Response: %s\n%s", r.Status, r.Body)
}

// Short is a one-line form of Summary
func (r *Result) Short() string {
	return fmt.Sprintf("%s (%s in %s)", r.Status, humanize.Bytes(uint64(len(r.Body))), r.Duration.Round(time.Millisecond))
}

// Dispatcher sends outbound requests, exactly once each
type Dispatcher struct {
	client Doer
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher. A nil client uses a plain http.Client with
// the default transport and no timeout of its own.
func NewDispatcher(client Doer, logger *logging.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = logging.DefaultLogger
		if logger == nil {
			logger = logging.NewLogger("[hook]", false)
		}
	}
	return &Dispatcher{client: client, logger: logger}
}

// Send performs one network call for req. Transport failures, including a
// malformed URL, come back as a DispatchError.
func (d *Dispatcher) Send(ctx context.Context, req *OutboundRequest) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = apperrors.Dispatch(fmt.Errorf("%v", r), "request panicked")
		}
	}()

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, apperrors.Dispatch(err, "invalid request")
	}

	d.logger.Debugf("Sending %s %s (%d byte body)", req.Method, req.URL, len(req.Body))
	start := time.Now()

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Dispatch(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Dispatch(err, "failed to read response body")
	}

	res = &Result{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
		Duration:   time.Since(start),
	}
	d.logger.Debugf("Callback answered %s", res.Short())
	return res, nil
}
