//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package query implements "mtv query".
package query

import (
	"context"
	"fmt"

	"github.com/manetu/tablevalidator/cmd/mtv/common"
	"github.com/manetu/tablevalidator/pkg/validator"
	"github.com/urfave/cli/v3"
)

// Execute answers a single "SUBJECT QUERY-TYPE EXPRESSION" question and
// prints true or false.
func Execute(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 3 {
		return fmt.Errorf("expected SUBJECT QUERY-TYPE EXPRESSION, got %d argument(s)", cmd.Args().Len())
	}

	engine, err := common.NewCliEngine(cmd)
	if err != nil {
		return err
	}

	outcome, err := engine.Validator.Query(ctx, cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2))
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	switch outcome {
	case validator.Satisfied:
		_, _ = fmt.Fprintln(out, "true")
	case validator.Unsatisfied:
		_, _ = fmt.Fprintln(out, "false")
	default:
		_, _ = fmt.Fprintf(out, "false (%s)\n", outcome)
	}
	return nil
}
