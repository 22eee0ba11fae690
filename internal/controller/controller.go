// Package controller owns the monitoring lifecycle and turns process launches
// into callback dispatches.
package controller

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"launchhook/internal/config"
	apperrors "launchhook/internal/errors"
	"launchhook/internal/hook"
	"launchhook/internal/logging"
	"launchhook/internal/monitor"
	"launchhook/internal/placeholder"
	"launchhook/internal/status"
)

// State of the monitor
type State int

const (
	Idle State = iota
	Monitoring
)

func (s State) String() string {
	if s == Monitoring {
		return "Monitoring"
	}
	return "Idle"
}

// RequestSource supplies the live callback configuration. It is read once per
// dispatch and must return a copy.
type RequestSource interface {
	RequestConfig() hook.RequestConfig
}

// Sender performs one outbound call. *hook.Dispatcher satisfies it.
type Sender interface {
	Send(ctx context.Context, req *hook.OutboundRequest) (*hook.Result, error)
}

// Options configures a Controller
type Options struct {
	Watcher  monitor.ProcessWatcher
	Sender   Sender
	Source   RequestSource
	Reporter *status.Reporter
	Logger   *logging.Logger

	// Now and Hostname feed the placeholder context; zero values use the
	// wall clock and os.Hostname.
	Now      func() time.Time
	Hostname string
}

// ErrClosed is returned by operations on a closed controller
var ErrClosed = errors.New("controller closed")

const taskQueueSize = 64

// Controller holds at most one watch at a time. Watch events and dispatch
// completions are serialized on a single control goroutine; the network calls
// themselves run on their own goroutines.
type Controller struct {
	watcher  monitor.ProcessWatcher
	sender   Sender
	source   RequestSource
	reporter *status.Reporter
	logger   *logging.Logger
	now      func() time.Time
	hostname string

	// mu serializes start and stop
	mu     sync.Mutex
	state  State
	handle *monitor.Handle
	target string

	// generation of the live watch, 0 when idle. Read by the control goroutine
	// without mu so a stop waiting on the watcher can never deadlock with it.
	active atomic.Uint64
	gen    uint64

	tasks    chan func()
	quit     chan struct{}
	loopDone chan struct{}
	inflight sync.WaitGroup
	closed   atomic.Bool
	closeMu  sync.Once
}

// New creates a controller and starts its control goroutine. Watcher, Sender
// and Source are required.
func New(opts Options) *Controller {
	ctx := context.Background()
	apperrors.AssertNotNil(ctx, opts.Watcher, "controller requires a process watcher")
	apperrors.AssertNotNil(ctx, opts.Sender, "controller requires a sender")
	apperrors.AssertNotNil(ctx, opts.Source, "controller requires a request source")

	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger
		if logger == nil {
			logger = logging.NewLogger("[controller]", false)
		}
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = status.NewReporter(logger)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	hostname := opts.Hostname
	if hostname == "" {
		if h, err := os.Hostname(); err == nil {
			hostname = h
		} else {
			hostname = placeholder.Unknown
		}
	}

	c := &Controller{
		watcher:  opts.Watcher,
		sender:   opts.Sender,
		source:   opts.Source,
		reporter: reporter,
		logger:   logger,
		now:      now,
		hostname: hostname,
		tasks:    make(chan func(), taskQueueSize),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Reporter returns the status surface the controller publishes to
func (c *Controller) Reporter() *status.Reporter {
	return c.reporter
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Target returns the name being watched, or "" when idle
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Handle returns the live watch handle, or nil when idle
func (c *Controller) Handle() *monitor.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Start subscribes to launches of cfg's target. It fails with InvalidTarget when
// no target is set, AlreadyMonitoring while a watch is live and WatchSetup when
// the subscription cannot be established. Failures leave the controller Idle.
func (c *Controller) Start(cfg config.MonitorConfig) error {
	if c.closed.Load() {
		return ErrClosed
	}

	target := strings.TrimSpace(cfg.TargetProcessName)
	if target == "" {
		err := apperrors.InvalidTarget("please select an application first")
		c.reportError(err)
		return err
	}

	c.mu.Lock()
	if c.state == Monitoring {
		current := c.target
		c.mu.Unlock()
		return apperrors.AlreadyMonitoring(current)
	}

	c.gen++
	gen := c.gen
	filter := monitor.NewFilter(target)

	h, err := c.watcher.Subscribe(filter, func(ev monitor.Event) {
		c.post(func() { c.handleMatch(gen, target, ev) })
	})
	if err != nil {
		c.mu.Unlock()
		if apperrors.KindOf(err) != apperrors.KindWatchSetup {
			err = apperrors.WatchSetup(err, "failed to watch for "+filter.Image())
		}
		c.reportError(err)
		return err
	}

	c.handle = h
	c.target = target
	c.state = Monitoring
	c.active.Store(gen)
	c.mu.Unlock()

	c.logger.Debugf("Watch %d started for %s", h.ID(), filter.Image())
	c.reporter.Publish(status.Status{
		Kind:    status.KindMonitorStarted,
		Message: "Monitoring started for " + target,
		App:     target,
	})
	return nil
}

// Stop releases the live watch. It returns once the subscription is fully
// released and is a no-op when idle.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return nil
	}

	c.active.Store(0)
	h := c.handle
	err := c.watcher.Unsubscribe(h)
	c.handle = nil
	c.target = ""
	c.state = Idle
	c.mu.Unlock()

	if err != nil {
		c.logger.Warnf("Watch %d did not release cleanly: %v", h.ID(), err)
	}
	c.reporter.Report(status.KindMonitorStopped, "Monitoring stopped")
	return nil
}

// SendNow dispatches one callback for app outside of any watch, the way the
// "test" action does, and waits for the outcome. The status surface is updated
// as for a real launch.
func (c *Controller) SendNow(ctx context.Context, app string) (*hook.Result, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	type outcome struct {
		res *hook.Result
		err error
	}
	done := make(chan outcome, 1)

	c.post(func() {
		c.dispatch(app, 0, func(res *hook.Result, err error) {
			done <- outcome{res, err}
		})
	})

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Trigger queues a test dispatch for app without waiting for it
func (c *Controller) Trigger(app string) {
	c.post(func() { c.dispatch(app, 0, nil) })
}

// Close stops monitoring, waits for in-flight dispatches to finish and stops
// the control goroutine. It is safe to call more than once.
func (c *Controller) Close() error {
	var err error
	c.closeMu.Do(func() {
		err = c.Stop()
		c.closed.Store(true)

		// Anything queued before this barrier has been dispatched, anything after
		// sees closed and is dropped.
		barrier := make(chan struct{})
		c.post(func() { close(barrier) })
		<-barrier

		c.inflight.Wait()
		close(c.quit)
		<-c.loopDone
	})
	return err
}

func (c *Controller) loop() {
	defer close(c.loopDone)
	for {
		select {
		case task := <-c.tasks:
			task()
		case <-c.quit:
			return
		}
	}
}

// post hands task to the control goroutine
func (c *Controller) post(task func()) {
	select {
	case c.tasks <- task:
	case <-c.quit:
	}
}

// handleMatch runs on the control goroutine for every event of watch gen
func (c *Controller) handleMatch(gen uint64, target string, ev monitor.Event) {
	if c.active.Load() != gen {
		c.logger.Debugf("Dropping event for %s (PID: %d) from a released watch", ev.Name, ev.PID)
		return
	}
	c.dispatch(target, ev.PID, nil)
}

// dispatch builds the request from the live configuration and sends it on a
// new goroutine. done, if set, is called on the control goroutine.
func (c *Controller) dispatch(app string, pid int, done func(*hook.Result, error)) {
	if c.closed.Load() {
		if done != nil {
			done(nil, ErrClosed)
		}
		return
	}

	id := uuid.NewString()
	pctx := placeholder.Context{
		placeholder.KeyApp:        app,
		placeholder.KeyTimestamp:  placeholder.FormatTimestamp(c.now()),
		placeholder.KeyDispatchID: id,
		placeholder.KeyHostname:   c.hostname,
	}
	if pid > 0 {
		pctx[placeholder.KeyPID] = strconv.Itoa(pid)
	}
	req := hook.Build(c.source.RequestConfig(), pctx)

	name := app
	if name == "" {
		name = placeholder.Unknown
	}
	c.reporter.Publish(status.Status{
		Kind:       status.KindDispatchStarted,
		Message:    name + " started. Sending API request...",
		App:        app,
		PID:        pid,
		DispatchID: id,
	})

	log := c.logger.With("dispatch_id", id)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		res, err := c.sender.Send(context.Background(), req)
		c.post(func() {
			c.finish(log, app, pid, id, res, err)
			if done != nil {
				done(res, err)
			}
		})
	}()
}

// finish reports the outcome of one dispatch on the control goroutine
func (c *Controller) finish(log *logging.Logger, app string, pid int, id string, res *hook.Result, err error) {
	if err != nil {
		log.Debugf("Dispatch failed (%s): %v", apperrors.KindOf(err), apperrors.Detail(err))
		c.reporter.Publish(status.Status{
			Kind:       status.KindError,
			Message:    "Error: " + err.Error(),
			App:        app,
			PID:        pid,
			DispatchID: id,
		})
		return
	}

	log.Debugf("Dispatch answered %s", res.Short())
	c.reporter.Publish(status.Status{
		Kind:       status.KindDispatchSent,
		Message:    "API request sent.",
		Detail:     res.Summary(),
		App:        app,
		PID:        pid,
		DispatchID: id,
	})
}

func (c *Controller) reportError(err error) {
	c.logger.Debugf("%s: %v", apperrors.KindOf(err), apperrors.Detail(err))
	c.reporter.Publish(status.Status{Kind: status.KindError, Message: "Error: " + err.Error()})
}
