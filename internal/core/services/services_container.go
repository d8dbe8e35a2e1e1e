package services

import (
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/platform/config"
	"github.com/SscSPs/secure_pay/internal/utils"
)

// ContainerOption customizes NewServiceContainer.
type ContainerOption func(*containerOptions)

type containerOptions struct {
	recorder portssvc.OperationRecorder
	hasher   portssvc.SecretHasher
	retry    RetryPolicy
}

// WithOperationRecorder wires ledger outcomes into metrics.
func WithOperationRecorder(r portssvc.OperationRecorder) ContainerOption {
	return func(o *containerOptions) { o.recorder = r }
}

// WithSecretHasher replaces the bcrypt hasher built from config.
func WithSecretHasher(h portssvc.SecretHasher) ContainerOption {
	return func(o *containerOptions) { o.hasher = h }
}

// WithRetryPolicy overrides DefaultRetryPolicy for every service.
func WithRetryPolicy(p RetryPolicy) ContainerOption {
	return func(o *containerOptions) { o.retry = p }
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ContainerOption) *portssvc.ServiceContainer {
	o := containerOptions{
		recorder: portssvc.NoopRecorder{},
		retry:    DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasher == nil {
		o.hasher = utils.NewBcryptHasher(cfg.BcryptCost)
	}

	container := &portssvc.ServiceContainer{}
	container.Token = NewTokenService(cfg)
	container.Account = NewAccountService(repos.AccountRepo, o.hasher, WithAccountRetryPolicy(o.retry))
	container.Lifecycle = NewLifecycleService(repos.AccountRepo, o.recorder, o.retry)
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.LedgerRepo, o.recorder, o.retry)
	container.Auth = NewAuthService(repos.AccountRepo, o.hasher, container.Token, o.retry)
	container.Google = NewGoogleOAuthService(cfg)
	container.Health = NewHealthService(repos.Health)
	return container
}
