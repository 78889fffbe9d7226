package testkit

import (
	"github.com/super-flat/actorsdi/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewObservedLogger returns a logger recording every entry at or above level,
// and the recorded entries
func NewObservedLogger(level log.Level) (log.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.LevelEnabler(level))
	return log.NewZap(zap.New(core)), logs
}
