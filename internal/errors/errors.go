// Package errors provides structured error handling for the application
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Standard error codes based on gRPC error code specification
const (
	// Base value for custom codes
	launchhookCodeBase = 1000

	// Custom error codes
	CodeInvalidTarget = launchhookCodeBase + iota
	CodeWatchSetup
	CodeDispatch
	CodeConfigLoad
	CodeAlreadyMonitoring
	CodeAutostart
)

// Kind classifies the failures the core reports to its callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidTarget
	KindWatchSetup
	KindDispatch
	KindConfigLoad
	KindAlreadyMonitoring
	KindAutostart
)

// Sentinels for errors.Is matching
var (
	ErrInvalidTarget     = errors.New("no target process selected")
	ErrWatchSetup        = errors.New("process watch setup failed")
	ErrDispatch          = errors.New("dispatch failed")
	ErrConfigLoad        = errors.New("config load failed")
	ErrAlreadyMonitoring = errors.New("monitoring already active")
	ErrAutostart         = errors.New("autostart operation failed")
	ErrUnsupported       = errors.New("not supported on this platform")
)

var kinds = map[Kind]struct {
	name     string
	code     int
	sentinel error
}{
	KindInvalidTarget:     {"InvalidTargetError", CodeInvalidTarget, ErrInvalidTarget},
	KindWatchSetup:        {"WatchSetupError", CodeWatchSetup, ErrWatchSetup},
	KindDispatch:          {"DispatchError", CodeDispatch, ErrDispatch},
	KindConfigLoad:        {"ConfigLoadError", CodeConfigLoad, ErrConfigLoad},
	KindAlreadyMonitoring: {"AlreadyMonitoringError", CodeAlreadyMonitoring, ErrAlreadyMonitoring},
	KindAutostart:         {"AutostartError", CodeAutostart, ErrAutostart},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "UnknownError"
}

// Error is a classified failure. It unwraps to both its kind sentinel and its cause,
// so errors.Is works against either.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Cause.Error()
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if info, ok := kinds[e.Kind]; ok {
		errs = append(errs, info.sentinel)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Code returns the numeric code attached to the error kind
func (e *Error) Code() errbuilder.ErrCode {
	if info, ok := kinds[e.Kind]; ok {
		return errbuilder.ErrCode(info.code)
	}
	return errbuilder.CodeUnknown
}

// Detail renders the error through errbuilder for structured logging
func (e *Error) Detail() error {
	b := errbuilder.New().
		WithCode(e.Code()).
		WithMsg(e.Msg)
	if e.Cause != nil {
		return b.WithCause(e.Cause)
	}
	return b
}

// Detail returns the errbuilder rendering of the first classified error in
// err's chain, or err itself when nothing in the chain is classified.
func Detail(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail()
	}
	return err
}

// KindOf reports the kind of the first classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newKind(kind Kind, cause error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// InvalidTarget is returned when monitoring is requested without a target name
func InvalidTarget(msg string) error {
	return newKind(KindInvalidTarget, nil, msg)
}

// WatchSetup wraps a failure to establish the OS process subscription
func WatchSetup(cause error, msg string) error {
	return newKind(KindWatchSetup, cause, msg)
}

// Dispatch wraps a transport-level failure of the callback request
func Dispatch(cause error, msg string) error {
	return newKind(KindDispatch, cause, msg)
}

// ConfigLoad wraps an unreadable or malformed persisted config
func ConfigLoad(cause error, msg string) error {
	return newKind(KindConfigLoad, cause, msg)
}

// AlreadyMonitoring is returned by a start request while a watch is active
func AlreadyMonitoring(target string) error {
	return newKind(KindAlreadyMonitoring, nil, fmt.Sprintf("already monitoring %s", target))
}

// Autostart wraps a failure to register or unregister the login entry
func Autostart(cause error, msg string) error {
	return newKind(KindAutostart, cause, msg)
}

// GlobalAssertHandler is a global assertion handler
var GlobalAssertHandler *assert.AssertHandler

func init() {
	GlobalAssertHandler = assert.NewAssertHandler()
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}

	return errbuilder.New().
		WithCode(errbuilder.CodeUnknown).
		WithMsg(msg).
		WithCause(err)
}

// ValidationError creates a validation error
func ValidationError(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

// Is checks if an error is a specific error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// AssertNotNil asserts that the given value is not nil
func AssertNotNil(ctx context.Context, val interface{}, msg string) {
	GlobalAssertHandler.NotNil(ctx, val, msg)
}
