package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the logging level
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// Logger is the logging interface used across the actors packages
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger logs at info level to stdout
var DefaultLogger = New(InfoLevel, os.Stdout)

// DiscardLogger drops everything
var DiscardLogger = NewZap(zap.NewNop())

// Log implements Logger on top of zap
type Log struct {
	sugar *zap.SugaredLogger
}

var _ Logger = (*Log)(nil)

// New creates a Log writing JSON lines at the given level to the writers.
// With no writers it writes to stdout.
func New(level Level, writers ...io.Writer) *Log {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.NewMultiWriteSyncer(syncers...),
		zap.NewAtomicLevelAt(level),
	)
	return NewZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
}

// NewZap wraps an existing zap logger
func NewZap(logger *zap.Logger) *Log {
	return &Log{sugar: logger.Sugar()}
}

// ParseLevel converts a level name such as "debug" into a Level.
// Unknown names fall back to info.
func ParseLevel(name string) Level {
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return InfoLevel
	}
	return level
}

func (l *Log) Debug(args ...any)                 { l.sugar.Debug(args...) }
func (l *Log) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *Log) Info(args ...any)                  { l.sugar.Info(args...) }
func (l *Log) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Log) Warn(args ...any)                  { l.sugar.Warn(args...) }
func (l *Log) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Log) Error(args ...any)                 { l.sugar.Error(args...) }
func (l *Log) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

// Sync flushes buffered entries
func (l *Log) Sync() error {
	return l.sugar.Sync()
}
