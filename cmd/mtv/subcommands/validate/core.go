//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package validate implements "mtv validate".
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/manetu/tablevalidator/cmd/mtv/common"
	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/config"
	"github.com/manetu/tablevalidator/pkg/report"
	"github.com/manetu/tablevalidator/pkg/table"
	"github.com/manetu/tablevalidator/pkg/validator"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("mtv")

const agent string = "validate"

// ErrValidationFailed is returned when at least one table is invalid and
// --no-fail is not in effect.
var ErrValidationFailed = errors.New("validation failed")

var (
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Execute validates every --table against the --kb knowledge base.
func Execute(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.StringSlice("table")
	if len(paths) == 0 {
		return fmt.Errorf("at least one table must be specified")
	}

	factory := report.NewNullFactory()
	if p := cmd.String("errors"); p != "" {
		f, err := report.FactoryForPath(p)
		if err != nil {
			return err
		}
		factory = f
	}

	engine, err := common.NewCliEngine(cmd, validator.WithReport(factory))
	if err != nil {
		return err
	}

	out := cmd.Root().Writer

	tables := make([]*table.Table, 0, len(paths))
	for _, p := range paths {
		_, _ = fmt.Fprintf(out, "Validating %s ...\n", p)
		t, err := table.Load(p)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}

	result, err := engine.Validator.Validate(ctx, tables)
	if err != nil {
		return err
	}

	logger.Debugf(agent, "Execute", "run %s: %d record(s)", result.RunID, result.Count())

	return summarize(out, result, cmd.Bool("no-fail") || config.VConfig.GetBool(config.NoFail))
}

func summarize(out io.Writer, result *validator.Result, noFail bool) error {
	if result.HasErrors() {
		_, _ = fmt.Fprintln(out, result.Summary())
	}

	if result.Valid() {
		_, _ = fmt.Fprintln(out, successColor("All tables are valid."))
		return nil
	}

	_, _ = fmt.Fprintln(out, errorColor("VALIDATION FAILED - the following table(s) had one or more rule violation:"))
	for _, name := range result.InvalidTables {
		_, _ = fmt.Fprintf(out, "  %s\n", name)
	}

	if noFail {
		return nil
	}
	return ErrValidationFailed
}
