package domain

import (
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

const (
	TransactionTypeIncome   = "income"
	TransactionTypeExpense  = "expense"
	TransactionTypeTransfer = "transfer"
)

func IsValidTransactionType(transactionType string) bool {
	return transactionType == TransactionTypeIncome ||
		transactionType == TransactionTypeExpense ||
		transactionType == TransactionTypeTransfer
}

// Transaction amounts are always non-negative; the direction of the money is
// carried by Type. ExternalID is the provider's transaction id and acts as
// the idempotency key for synced rows.
type Transaction struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	AccountID       string     `json:"account_id"`
	CategoryID      *string    `json:"category_id,omitempty"`
	Amount          float64    `json:"amount"`
	Type            string     `json:"type"`
	Description     string     `json:"description"`
	Date            time.Time  `json:"date"`
	ExternalID      *string    `json:"external_id,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	AutoCategorized bool       `json:"auto_categorized"`
	ConfidenceScore *float64   `json:"confidence_score,omitempty"`
	IsRecurring     bool       `json:"is_recurring"`
	TemplateID      *string    `json:"template_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (t *Transaction) Validate() error {
	if t.Amount < 0 {
		return errors.NewValidationError("Amount must not be negative")
	}
	if !IsValidTransactionType(t.Type) {
		return errors.NewValidationError("Type must be 'income', 'expense' or 'transfer'")
	}
	if t.Description == "" {
		return errors.NewValidationError("Description is required")
	}
	return nil
}

type MonthlyTotal struct {
	Month   time.Time
	Income  float64
	Expense float64
}

type TransactionRepository interface {
	// InsertIfAbsent inserts the transaction unless its idempotency key
	// (external id, or template id + date for recurring occurrences) is
	// already present. Reports whether a row was actually inserted; a
	// duplicate is a normal no-op, not an error.
	InsertIfAbsent(transaction Transaction) (bool, error)
	FindByID(transactionID string) (*Transaction, error)
	FindByUser(userID, transactionType string, startDate, endDate time.Time, limit, page int) ([]Transaction, error)
	FindUncategorized(userID string, limit int) ([]Transaction, error)
	FindCategorizedByType(userID, transactionType string, limit int) ([]Transaction, error)
	UpdateCategory(transactionID string, categoryID *string, autoCategorized bool, confidence *float64) error
	GetMonthlyTotals(userID string, startMonth, endMonth time.Time) ([]MonthlyTotal, error)
}
