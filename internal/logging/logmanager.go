//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// LogManager keeps track of all instantiated loggers
type LogManager struct {
	loggers  map[string]*Logger
	defLevel zapcore.Level
}

var (
	manager *LogManager
	mu      sync.RWMutex
	once    sync.Once
)

// resetForTesting resets the manager state - only for testing
func resetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	manager = nil
	once = sync.Once{}
}

func ensureManager() {
	once.Do(func() {
		manager = &LogManager{
			loggers:  make(map[string]*Logger),
			defLevel: zapcore.InfoLevel,
		}
	})
}

// GetLogger returns a logger for the specified module
func GetLogger(module string) *Logger {
	ensureManager()

	mu.RLock()
	if l := manager.loggers[module]; l != nil {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l := manager.loggers[module]; l != nil {
		return l
	}

	l := newLogger(module)
	l.SetLevel(manager.defLevel)
	manager.loggers[module] = l

	return l
}

// ParseLevel converts a level name to a zapcore.Level.  "trace" is accepted
// as an alias for debug.
func ParseLevel(levelStr string) (zapcore.Level, error) {
	switch strings.ToLower(levelStr) {
	case "panic":
		return zapcore.PanicLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "debug", "trace":
		return zapcore.DebugLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", levelStr)
}

// UpdateLogLevels updates log levels from a string of the form:
// "mod1:debug;mod2:error;.:info"
// where "." names the default for every module without an explicit entry.
// Whitespace is ignored.  The whole string is validated before any level is
// applied, so a malformed entry leaves the current levels untouched.
func UpdateLogLevels(logstr string) error {
	ensureManager()

	logstr = strings.Join(strings.Fields(logstr), "")

	explicit := make(map[string]zapcore.Level)
	var defaultLevel zapcore.Level
	hasDefault := false

	for _, entry := range strings.Split(logstr, ";") {
		if entry == "" {
			continue
		}
		mod, levelStr, found := strings.Cut(entry, ":")
		if !found || mod == "" {
			return fmt.Errorf("malformed log level entry %q, expected <module>:<level>", entry)
		}
		level, err := ParseLevel(levelStr)
		if err != nil {
			return err
		}
		if mod == "." {
			defaultLevel = level
			hasDefault = true
		} else {
			explicit[mod] = level
		}
	}

	mu.Lock()
	defer mu.Unlock()

	for mod, level := range explicit {
		l := manager.loggers[mod]
		if l == nil {
			l = newLogger(mod)
			manager.loggers[mod] = l
		}
		l.SetLevel(level)
	}

	if hasDefault {
		manager.defLevel = defaultLevel
		for mod, l := range manager.loggers {
			if _, ok := explicit[mod]; !ok {
				l.SetLevel(defaultLevel)
			}
		}
	}

	return nil
}
