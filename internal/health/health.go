// Package health provides health check implementations for external dependencies.
package health

import "context"

// Checker is implemented by dependency health checks.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
