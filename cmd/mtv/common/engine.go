//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package common holds the setup shared by the mtv subcommands.
package common

import (
	"fmt"

	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/config"
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/kb/parsers"
	"github.com/manetu/tablevalidator/pkg/metrics"
	"github.com/manetu/tablevalidator/pkg/opa"
	"github.com/manetu/tablevalidator/pkg/oracle/structural"
	"github.com/manetu/tablevalidator/pkg/validator"
	"github.com/urfave/cli/v3"
)

// Engine bundles what a subcommand needs to validate tables or answer
// queries.
type Engine struct {
	KB        *kb.KnowledgeBase
	Metrics   *metrics.Metrics
	Validator *validator.Validator
}

// Setup loads the configuration and applies the global --log-level flag.
func Setup(cmd *cli.Command) error {
	if err := config.Load(); err != nil {
		return err
	}
	if level := cmd.Root().String("log-level"); level != "" {
		return logging.UpdateLogLevels(level)
	}
	return nil
}

func getUnsafeBuiltins() opa.Builtins {
	m := make(opa.Builtins)
	for _, b := range config.GetUnsafeBuiltins() {
		m[b] = struct{}{}
	}
	return m
}

// NewCliEngine loads the knowledge base named by --kb and builds a validator
// from the configuration, overridden by whichever of --parallelism,
// --query-timeout, --silent and --skip-row the command defines and the user
// set.  Additional validator options are applied last.
func NewCliEngine(cmd *cli.Command, options ...validator.OptionsFunc) (*Engine, error) {
	if err := Setup(cmd); err != nil {
		return nil, err
	}

	path := cmd.String("kb")
	if path == "" {
		return nil, fmt.Errorf("a knowledge base must be specified with --kb")
	}

	k, err := parsers.Load(path)
	if err != nil {
		return nil, err
	}

	compiler := opa.NewCompiler(
		opa.WithUnsafeBuiltins(getUnsafeBuiltins()),
		opa.WithDefaultTracing(cmd.Root().Bool("trace")))
	o, err := structural.NewFactory(structural.WithMaxDepth(config.VConfig.GetInt(config.MaxDepth))).NewOracle(k, compiler)
	if err != nil {
		return nil, err
	}

	m := metrics.New(config.VConfig.GetString(config.MetricsNamespace), nil)

	parallelism := config.VConfig.GetInt(config.Parallelism)
	if cmd.IsSet("parallelism") {
		parallelism = cmd.Int("parallelism")
	}
	timeout := config.VConfig.GetDuration(config.QueryTimeout)
	if cmd.IsSet("query-timeout") {
		timeout = cmd.Duration("query-timeout")
	}
	silent := config.VConfig.GetBool(config.Silent)
	if cmd.IsSet("silent") {
		silent = cmd.Bool("silent")
	}

	opts := []validator.OptionsFunc{
		validator.WithMetrics(m),
		validator.WithParallelism(parallelism),
		validator.WithQueryTimeout(timeout),
		validator.WithSilent(silent),
		validator.WithSkipRow(cmd.Int("skip-row")),
	}

	return &Engine{
		KB:        k,
		Metrics:   m,
		Validator: validator.New(k, o, append(opts, options...)...),
	}, nil
}
