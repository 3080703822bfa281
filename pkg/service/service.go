//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package service provides the interface of network services that expose the
// table validator.
//
// # Available Implementations
//
//   - [rest]: HTTP/JSON validation endpoint with Prometheus metrics
//
// # Usage
//
//	v := validator.New(k, o, validator.WithMetrics(m))
//	server, _ := rest.CreateServer(v, m, 9000)
//	defer server.Stop(ctx)
package service

import "context"

// Server is the interface for validation servers that can be gracefully
// stopped.
//
// Implementations must ensure that [Stop] completes any in-flight requests
// before returning.
type Server interface {
	// Stop gracefully shuts down the server, waiting for active requests
	// to complete or until the context is cancelled.
	Stop(context.Context) error
}
