package services

import (
	"context"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
)

const healthCheckTimeout = 2 * time.Second

type healthService struct {
	checker portsrepo.HealthChecker
}

// NewHealthService reports store readiness.
func NewHealthService(checker portsrepo.HealthChecker) portssvc.HealthSvc {
	return &healthService{checker: checker}
}

func (s *healthService) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := s.checker.Ping(ctx); err != nil {
		if apperrors.IsRetryable(err) {
			return err
		}
		return apperrors.Unavailable("store ping failed", err)
	}
	return nil
}
