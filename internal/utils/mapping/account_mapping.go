package mapping

import (
	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/SscSPs/secure_pay/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:    d.AccountID,
		Name:         d.Name,
		Email:        d.Email,
		MobileNumber: d.MobileNumber,
		PINHash:      d.PINHash,
		Role:         string(d.Role),
		Status:       string(d.Status),
		Balance:      d.Balance,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		Name:         m.Name,
		Email:        m.Email,
		MobileNumber: m.MobileNumber,
		PINHash:      m.PINHash,
		Role:         domain.Role(m.Role),
		Status:       domain.Status(m.Status),
		Balance:      m.Balance,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccounts converts a slice of model Accounts
func ToDomainAccounts(ms []models.Account) []domain.Account {
	accounts := make([]domain.Account, len(ms))
	for i, m := range ms {
		accounts[i] = ToDomainAccount(m)
	}
	return accounts
}
