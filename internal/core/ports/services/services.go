package services

// ServiceContainer holds all service interfaces for dependency injection.
type ServiceContainer struct {
	Account   AccountSvcFacade
	Lifecycle LifecycleSvcFacade
	Ledger    LedgerSvcFacade
	Auth      AuthSvcFacade
	Token     TokenSvc
	Google    GoogleOAuthSvc
	Health    HealthSvc
}
