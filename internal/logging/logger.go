package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides application-wide logging functionality
type Logger struct {
	sugar  *zap.SugaredLogger
	level  zap.AtomicLevel
	prefix string
	fields []interface{}
	mu     sync.RWMutex
}

// Global logger instance
var (
	DefaultLogger *Logger
	once          sync.Once
)

// InitLogger initializes the global logger
func InitLogger(prefix string, verbose bool) {
	once.Do(func() {
		DefaultLogger = NewLogger(prefix, verbose)
	})
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(prefix string, verbose bool) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	l := &Logger{
		level:  level,
		prefix: strings.Trim(prefix, "[] "),
	}
	l.sugar = l.build(os.Stdout)
	return l
}

func (l *Logger) build(w io.Writer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), l.level)
	base := zap.New(core)
	if l.prefix != "" {
		base = base.Named(l.prefix)
	}
	return base.Sugar().With(l.fields...)
}

// With returns a child logger carrying the given key/value pairs.
// The child shares the parent's level.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := make([]interface{}, 0, len(l.fields)+len(keysAndValues))
	fields = append(fields, l.fields...)
	fields = append(fields, keysAndValues...)

	return &Logger{
		sugar:  l.sugar.With(keysAndValues...),
		level:  l.level,
		prefix: l.prefix,
		fields: fields,
	}
}

// SetVerbose changes the verbosity level of the logger
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.level.SetLevel(zapcore.DebugLevel)
		return
	}
	l.level.SetLevel(zapcore.InfoLevel)
}

// Verbose reports whether debug messages are emitted
func (l *Logger) Verbose() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sugar = l.build(w)
}

func (l *Logger) s() *zap.SugaredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.s().Sync()
}

// Debug logs debug messages (only in verbose mode)
func (l *Logger) Debug(v ...interface{}) {
	l.s().Debug(v...)
}

// Debugf logs formatted debug messages (only in verbose mode)
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.s().Debugf(format, v...)
}

// Info logs informational messages
func (l *Logger) Info(v ...interface{}) {
	l.s().Info(v...)
}

// Infof logs formatted informational messages
func (l *Logger) Infof(format string, v ...interface{}) {
	l.s().Infof(format, v...)
}

// Warn logs warning messages
func (l *Logger) Warn(v ...interface{}) {
	l.s().Warn(v...)
}

// Warnf logs formatted warning messages
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.s().Warnf(format, v...)
}

// Error logs error messages
func (l *Logger) Error(v ...interface{}) {
	l.s().Error(v...)
}

// Errorf logs formatted error messages
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.s().Errorf(format, v...)
}

// Fatalf logs formatted fatal messages and exits the application
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.s().Fatalf(format, v...)
}
