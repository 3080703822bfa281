//
//  Copyright © Manetu Inc. All rights reserved.
//

package main

import (
	"context"
	"log"
	"os"

	"github.com/manetu/tablevalidator/cmd/mtv/subcommands/query"
	"github.com/manetu/tablevalidator/cmd/mtv/subcommands/serve"
	"github.com/manetu/tablevalidator/cmd/mtv/subcommands/validate"
	"github.com/manetu/tablevalidator/cmd/mtv/version"
	"github.com/urfave/cli/v3"
)

func kbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "kb",
		Aliases:  []string{"k"},
		Usage:    "Load the knowledge base from `FILE`",
		Required: true,
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "mtv",
		Usage:   "A CLI application for validating rule-annotated tables against a knowledge base",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Per-module log levels, e.g. '.:info;tablevalidator.validator:debug'",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "Log the OPA trace of the hierarchy closure at debug level (needs tablevalidator.opa:debug)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validates the data of one or more tables against the rules in their second row",
				Flags: []cli.Flag{
					kbFlag(),
					&cli.StringSliceFlag{
						Name:     "table",
						Aliases:  []string{"t"},
						Usage:    "Validate the CSV or TSV table in `FILE`.  Can be specified multiple times.",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "skip-row",
						Usage: "Ignore the row with this 1-based number in every table",
					},
					&cli.StringFlag{
						Name:    "errors",
						Aliases: []string{"e"},
						Usage:   "Write the error report to `PATH` (.tsv, .jsonl, .json, .db or '-' for stdout)",
					},
					&cli.BoolFlag{
						Name:  "no-fail",
						Usage: "Exit successfully even when a table is invalid",
					},
					&cli.BoolFlag{
						Name:  "silent",
						Usage: "Do not log each rule violation",
					},
					&cli.IntFlag{
						Name:  "parallelism",
						Usage: "Number of cells evaluated concurrently",
					},
					&cli.DurationFlag{
						Name:  "query-timeout",
						Usage: "Timeout of a single reasoning query; 0 disables it",
					},
				},
				Action: validate.Execute,
			},
			{
				Name:      "query",
				Usage:     "Answers a single question about the knowledge base",
				ArgsUsage: "SUBJECT QUERY-TYPE EXPRESSION",
				Flags: []cli.Flag{
					kbFlag(),
					&cli.DurationFlag{
						Name:  "query-timeout",
						Usage: "Timeout of the reasoning query; 0 disables it",
					},
				},
				Action: query.Execute,
			},
			{
				Name:  "serve",
				Usage: "Creates a validation service",
				Flags: []cli.Flag{
					kbFlag(),
					&cli.IntFlag{
						Name:  "port",
						Usage: "The TCP port to serve on.",
						Value: 9000,
					},
					&cli.IntFlag{
						Name:  "parallelism",
						Usage: "Number of cells evaluated concurrently",
					},
					&cli.DurationFlag{
						Name:  "query-timeout",
						Usage: "Timeout of a single reasoning query; 0 disables it",
					},
				},
				Action: serve.Execute,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
