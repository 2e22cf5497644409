package domain

import "time"

const (
	AccountTypeChecking   = "checking"
	AccountTypeSavings    = "savings"
	AccountTypeInvestment = "investment"
	AccountTypeCreditCard = "credit_card"
	AccountTypeOther      = "other"
)

// Account is a local ledger account. Provider-linked accounts carry the
// provider account id in ExternalID; manual accounts leave it nil.
type Account struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Balance    float64    `json:"balance"`
	Currency   string     `json:"currency"`
	BankName   string     `json:"bank_name"`
	ExternalID *string    `json:"external_id,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type AccountRepository interface {
	// Upsert inserts the account or, when (user_id, external_id) already
	// exists, refreshes balance, name, type and last sync timestamp.
	// Returns the local account id either way.
	Upsert(account Account) (string, error)
	FindByUser(userID string) ([]Account, error)
	DeactivateByBank(userID, bankName string) (int, error)
	TotalBalance(userID string) (float64, error)
}
