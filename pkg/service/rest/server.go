//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package rest serves the table validator over HTTP.
//
//	POST /v1/validate   validate the tables in the request body
//	GET  /metrics       Prometheus exposition
//	GET  /healthz       liveness
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/metrics"
	"github.com/manetu/tablevalidator/pkg/service"
	"github.com/manetu/tablevalidator/pkg/validator"
)

var logger = logging.GetLogger("tablevalidator.service.rest")

const agent = "rest"

// Server represents the REST validation server.
type Server struct {
	echo *echo.Echo
}

// NewHandler builds the HTTP routes without starting a listener.  A nil
// metrics collector serves an empty registry.
func NewHandler(v *validator.Validator, m *metrics.Metrics) *echo.Echo {
	if m == nil {
		m = metrics.New("", nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	h := &handler{validator: v}
	e.POST("/v1/validate", h.validate)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	return e
}

// CreateServer creates and starts a new REST server on port.
func CreateServer(v *validator.Validator, m *metrics.Metrics, port int) (service.Server, error) {
	e := NewHandler(v, m)

	// Start server in goroutine since e.Start() blocks
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
			logger.Errorf(agent, "Start", "server on port %d failed: %v", port, err)
		}
	}()

	logger.Infof(agent, "Start", "listening on port %d", port)

	return &Server{
		echo: e,
	}, nil
}

// Stop gracefully stops the Server by shutting down the Echo HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
