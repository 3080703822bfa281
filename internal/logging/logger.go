//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a per-module wrapper around zap.Logger.  Every record carries the
// module name plus an actor (who is acting) and an action (what it is doing).
type Logger struct {
	module string
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	level  zapcore.Level
	writer io.Writer
}

const (
	actor     = "actor"
	action    = "action"
	defActor  = "sys"
	defAction = "unk"
	module    = "module"
)

// internal function to create a logger without tracking. Application should
// call GetLogger() to retrieve a configured logger.
func newLogger(module string) *Logger {
	l := &Logger{
		module: module,
		level:  zapcore.InfoLevel,
	}
	l.rebuild()
	return l
}

// rebuild recreates the zap core from the current level and writer.  The
// encoder is chosen by LOG_FORMATTER ("text" selects the console encoder) and
// LOG_REPORT_CALLER enables caller annotation.
func (l *Logger) rebuild() {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	if os.Getenv("LOG_FORMATTER") == "text" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(l.Out()), l.level)

	options := []zap.Option{
		zap.AddCallerSkip(1), // skip this wrapper
	}
	if os.Getenv("LOG_REPORT_CALLER") != "" {
		options = append(options, zap.AddCaller())
	}

	l.logger = zap.New(core, options...)
	l.sugar = l.logger.Sugar()
}

// IsDebugEnabled returns true if the current logging level is debug or lower.
// Use it to guard debug logging whose arguments are expensive to compute.
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= zapcore.DebugLevel
}

// IsLevelEnabled checks if a level is enabled
func (l *Logger) IsLevelEnabled(level zapcore.Level) bool {
	return l.level <= level
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level = level
	l.rebuild()
}

// Out returns the output writer, stdout unless SetOut was called
func (l *Logger) Out() io.Writer {
	if l.writer != nil {
		return l.writer
	}
	return os.Stdout
}

// SetOut redirects the logger output (used by tests and by viper's DebugTo)
func (l *Logger) SetOut(w io.Writer) {
	l.writer = w
	l.rebuild()
}

func (l *Logger) with(actorID, actionID string) *zap.SugaredLogger {
	return l.sugar.With(
		zap.String(actor, actorID),
		zap.String(action, actionID),
		zap.String(module, l.module),
	)
}

// Debug log debug message
func (l *Logger) Debug(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Debug(args...)
}

// Debugf log debug message
func (l *Logger) Debugf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Debugf(format, args...)
}

// Info logs info message
func (l *Logger) Info(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Info(args...)
}

// Infof logs info message
func (l *Logger) Infof(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Infof(format, args...)
}

// Warn logs warning message
func (l *Logger) Warn(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Warn(args...)
}

// Warnf logs warning message
func (l *Logger) Warnf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Warnf(format, args...)
}

// Error logs error message
func (l *Logger) Error(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Error(args...)
}

// Errorf logs error message
func (l *Logger) Errorf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Errorf(format, args...)
}

// Below are functions using default actor and action

// SysDebugf logs debug message with default actor and action
func (l *Logger) SysDebugf(format string, args ...interface{}) {
	l.Debugf(defActor, defAction, format, args...)
}

// SysInfof logs info message with default actor and action
func (l *Logger) SysInfof(format string, args ...interface{}) {
	l.Infof(defActor, defAction, format, args...)
}

// SysWarnf logs warning message with default actor and action
func (l *Logger) SysWarnf(format string, args ...interface{}) {
	l.Warnf(defActor, defAction, format, args...)
}

// SysErrorf logs error message with default actor and action
func (l *Logger) SysErrorf(format string, args ...interface{}) {
	l.Errorf(defActor, defAction, format, args...)
}
