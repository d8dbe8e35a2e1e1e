package models

// Account is the persisted form of an account row.
type Account struct {
	AccountID    string `db:"account_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	MobileNumber string `db:"mobile_number"`
	PINHash      string `db:"pin_hash"`
	Role         string `db:"role"`
	Status       string `db:"status"`
	Balance      int64  `db:"balance"`
	AuditFields
}
