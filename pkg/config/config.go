//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package config provides configuration management for the table validator
// using [Viper] for flexible configuration sources.
//
// Configuration can be provided via:
//   - YAML configuration files
//   - Environment variables with the MTV_ prefix
//   - Programmatic defaults
//
// Command line flags take precedence over every source listed here.
//
// # Configuration File
//
// By default, the validator looks for mtv-config.yaml in the current
// directory.  Override the location using environment variables:
//
//	MTV_CONFIG_PATH=/etc/tablevalidator
//	MTV_CONFIG_FILENAME=production-config
//
// Example configuration file:
//
//	log:
//	  level: ".:info"
//	validate:
//	  parallelism: 4
//	  querytimeout: 30s
//	  silent: true
//	opa:
//	  unsafebuiltins: "http.send"
//
// # Environment Variables
//
// All configuration keys can be set via environment variables with the MTV_
// prefix. Dots in key names become underscores:
//
//	MTV_LOG_LEVEL=.:debug
//	MTV_VALIDATE_PARALLELISM=8
//
// # Configuration Keys
//
//   - log.level: Log level configuration (default: ".:info")
//   - validate.parallelism: Cells evaluated concurrently (default: 1)
//   - validate.querytimeout: Timeout for a single oracle query (default: "30s")
//   - validate.silent: Suppress per-failure log lines (default: true)
//   - validate.nofail: Exit successfully even when tables are invalid (default: false)
//   - reasoner.maxdepth: Nesting bound of a structural proof (default: 32)
//   - opa.unsafebuiltins: Comma-separated Rego built-ins to disable (default: "http.send")
//   - metrics.namespace: Prometheus namespace (default: "mtv")
//   - serve.port: Port of the validation service (default: 9000)
//
// [Viper]: https://github.com/spf13/viper
package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/spf13/viper"
)

// Environment variable and default path constants for configuration loading.
const (
	// EnvVarPrefix is the prefix for all validator environment variables.
	// For example, the key "log.level" becomes MTV_LOG_LEVEL.
	EnvVarPrefix string = "MTV"

	// ConfigPathEnv is the environment variable that specifies the directory
	// containing the configuration file.
	ConfigPathEnv string = "MTV_CONFIG_PATH"

	// ConfigFileNameEnv is the environment variable that specifies the
	// configuration file name (without extension).
	ConfigFileNameEnv string = "MTV_CONFIG_FILENAME"

	// ConfigDefaultPath is the default directory to search for config files.
	ConfigDefaultPath string = "."

	// ConfigDefaultFilename is the default configuration file name (without extension).
	ConfigDefaultFilename string = "mtv-config"
)

// Configuration key constants for use with [VConfig].
const (
	// LogLevel holds the per-module log levels, e.g. ".:info;tablevalidator.validator:debug".
	LogLevel string = "log.level"

	// Parallelism is the number of cells evaluated concurrently.  Values
	// below 2 select sequential evaluation.
	Parallelism string = "validate.parallelism"

	// QueryTimeout bounds each oracle query.  A timed out query is reported
	// as a warning rather than a failure.  Zero disables the timeout.
	QueryTimeout string = "validate.querytimeout"

	// Silent suppresses the info level line logged for every failed rule.
	Silent string = "validate.silent"

	// NoFail makes the CLI exit successfully even when tables are invalid.
	NoFail string = "validate.nofail"

	// MaxDepth bounds the nesting of a structural subsumption proof.
	MaxDepth string = "reasoner.maxdepth"

	// UnsafeBuiltIns is a comma-separated list of Rego built-in function names
	// to remove from OPA capabilities.
	UnsafeBuiltIns string = "opa.unsafebuiltins"

	// MetricsNamespace prefixes every exported Prometheus metric.
	MetricsNamespace string = "metrics.namespace"

	// ServePort is the port the validation service listens on.
	ServePort string = "serve.port"
)

var (
	once     sync.Once
	loadOnce sync.Once
	loadErr  error

	// VConfig is the global Viper configuration instance.
	//
	// VConfig is initialized automatically when [Load] or [Init] is called.
	VConfig *viper.Viper
	logger  = logging.GetLogger("tablevalidator.config")
)

// Init initializes the configuration system without loading config files.
// Subsequent calls are no-ops.
func Init() {
	once.Do(func() {
		doInitialize()
	})
}

func getConfigPath() string {
	configPath, ok := os.LookupEnv(ConfigPathEnv)
	if ok {
		return configPath
	}

	return ConfigDefaultPath
}

func getConfigFileName() string {
	configName, ok := os.LookupEnv(ConfigFileNameEnv)
	if ok {
		return configName
	}

	return ConfigDefaultFilename
}

func doInitialize() {
	VConfig = viper.New()

	// default is './mtv-config.yaml' but can be overridden with $(MTV_CONFIG_PATH)/$(MTV_CONFIG_FILENAME).yaml
	VConfig.AddConfigPath(getConfigPath())
	VConfig.SetConfigName(getConfigFileName())
	VConfig.SetConfigType("yaml")

	// keys such as 'log.level' become 'MTV_LOG_LEVEL'
	VConfig.SetEnvPrefix(EnvVarPrefix)
	VConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	VConfig.AutomaticEnv()

	VConfig.SetDefault(LogLevel, ".:info")
	VConfig.SetDefault(Parallelism, 1)
	VConfig.SetDefault(QueryTimeout, "30s")
	VConfig.SetDefault(Silent, true)
	VConfig.SetDefault(NoFail, false)
	VConfig.SetDefault(MaxDepth, 32)
	VConfig.SetDefault(UnsafeBuiltIns, "http.send")
	VConfig.SetDefault(MetricsNamespace, "mtv")
	VConfig.SetDefault(ServePort, 9000)
}

// Load initializes configuration and loads settings from files and
// environment, then applies the configured log levels.  A missing
// configuration file is not an error.  Subsequent calls return the result of
// the first.
func Load() error {
	loadOnce.Do(func() {
		Init()

		// early log level from the environment lets us debug the config loading
		earlyLoglevel := os.Getenv("MTV_LOG_LEVEL")
		if earlyLoglevel != "" {
			if err := logging.UpdateLogLevels(earlyLoglevel); err != nil {
				logger.SysErrorf("Failed updating early log level %s: %+v", earlyLoglevel, err)
				loadErr = err
				return
			}
		}

		logger.SysDebugf("Loading configuration from %s/%s.yaml", getConfigPath(), getConfigFileName())
		err := VConfig.ReadInConfig()
		if err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				logger.SysWarnf("error reading config; using defaults: %+v", err)
			}
			logger.SysDebugf("No config file found at %s/%s.yaml", getConfigPath(), getConfigFileName())
		}

		loglevel := VConfig.GetString(LogLevel)
		if err := logging.UpdateLogLevels(loglevel); err != nil {
			logger.SysErrorf("Failed updating log level %s: %+v", loglevel, err)
			loadErr = err
			return
		}

		if logger.IsDebugEnabled() {
			VConfig.DebugTo(logger.Out())
		}
	})

	return loadErr
}

// ResetConfig clears all configuration and reinitializes with defaults.
//
// WARNING: intended for testing only.  It resets global state.
func ResetConfig() {
	VConfig = nil
	once = sync.Once{}
	loadOnce = sync.Once{}
	loadErr = nil
	Init()
	_ = Load()
}

// GetUnsafeBuiltins returns the configured list of Rego built-ins to disable.
func GetUnsafeBuiltins() []string {
	var result []string
	for _, b := range strings.Split(VConfig.GetString(UnsafeBuiltIns), ",") {
		if b = strings.TrimSpace(b); b != "" {
			result = append(result, b)
		}
	}
	return result
}
