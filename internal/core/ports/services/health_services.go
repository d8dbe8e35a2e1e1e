package services

import "context"

// HealthSvc reports the readiness of the backing store.
type HealthSvc interface {
	Check(ctx context.Context) error
}
