//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package serve implements "mtv serve".
package serve

import (
	"context"
	"os"
	"os/signal"

	"github.com/manetu/tablevalidator/cmd/mtv/common"
	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/config"
	"github.com/manetu/tablevalidator/pkg/service/rest"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("mtv")

const agent string = "serve"

// Execute runs the REST validation service until interrupted.
func Execute(ctx context.Context, cmd *cli.Command) error {
	engine, err := common.NewCliEngine(cmd)
	if err != nil {
		return err
	}

	port := config.VConfig.GetInt(config.ServePort)
	if cmd.IsSet("port") {
		port = cmd.Int("port")
	}

	server, err := rest.CreateServer(engine.Validator, engine.Metrics, port)
	if err != nil {
		return err
	}

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	logger.Info(agent, "shutdown", "Shutting down server...")

	err = server.Stop(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	logger.Info(agent, "shutdown", "Server exited gracefully.")
	return nil
}
