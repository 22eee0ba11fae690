package util

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"launchhook/internal/logging"
)

// DefaultShutdownTimeout bounds how long registered funcs may take
const DefaultShutdownTimeout = 5 * time.Second

// ShutdownHandler manages graceful application shutdown
type ShutdownHandler struct {
	shutdownFuncs []func() error
	timeout       time.Duration
	logger        *logging.Logger
	once          sync.Once
	mu            sync.Mutex
	shutdownChan  chan os.Signal
	done          chan struct{}

	// exit is called once shutdown completes; nil returns to the caller instead
	exit func(code int)
}

// NewShutdownHandler creates a new shutdown handler that exits the process
// when shutdown completes
func NewShutdownHandler(logger *logging.Logger, timeout time.Duration) *ShutdownHandler {
	if timeout == 0 {
		timeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = logging.NewLogger("[shutdown]", false)
	}

	return &ShutdownHandler{
		shutdownFuncs: make([]func() error, 0),
		timeout:       timeout,
		logger:        logger,
		shutdownChan:  make(chan os.Signal, 1),
		done:          make(chan struct{}),
		exit:          os.Exit,
	}
}

// SetExitFunc replaces os.Exit. A nil func makes Shutdown return normally.
func (h *ShutdownHandler) SetExitFunc(exit func(code int)) {
	h.exit = exit
}

// RegisterShutdownFunc registers a function to be called during shutdown.
// Functions run in reverse registration order.
func (h *ShutdownHandler) RegisterShutdownFunc(f func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdownFuncs = append(h.shutdownFuncs, f)
}

// HandleShutdown starts handling OS signals for graceful shutdown
func (h *ShutdownHandler) HandleShutdown() {
	signal.Notify(h.shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig, ok := <-h.shutdownChan
		if !ok {
			return
		}
		h.logger.Infof("Received signal %v, initiating graceful shutdown", sig)
		h.Shutdown()
	}()
}

// Done is closed once shutdown has run
func (h *ShutdownHandler) Done() <-chan struct{} {
	return h.done
}

// Shutdown executes all registered shutdown functions with a timeout
func (h *ShutdownHandler) Shutdown() {
	h.once.Do(func() {
		signal.Stop(h.shutdownChan)

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		funcs := make([]func() error, len(h.shutdownFuncs))
		copy(funcs, h.shutdownFuncs)
		h.mu.Unlock()

		finished := make(chan struct{})
		go func() {
			for i := len(funcs) - 1; i >= 0; i-- {
				if err := funcs[i](); err != nil {
					h.logger.Errorf("Error during shutdown: %v", err)
				}
			}
			close(finished)
		}()

		select {
		case <-finished:
			h.logger.Info("Graceful shutdown completed")
		case <-ctx.Done():
			h.logger.Warn("Shutdown timed out, forcing exit")
		}
		_ = h.logger.Sync()

		close(h.done)
		if h.exit != nil {
			h.exit(0)
		}
	})
}
