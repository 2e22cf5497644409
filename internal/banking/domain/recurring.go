package domain

import (
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

func IsValidFrequency(frequency string) bool {
	return frequency == FrequencyDaily || frequency == FrequencyWeekly ||
		frequency == FrequencyMonthly || frequency == FrequencyYearly
}

// RecurringTemplate spawns one concrete transaction every time the scheduler
// finds NextRunDate due. Only the scheduler advances NextRunDate.
type RecurringTemplate struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	AccountID   string     `json:"account_id"`
	CategoryID  *string    `json:"category_id,omitempty"`
	Amount      float64    `json:"amount"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Frequency   string     `json:"frequency"`
	Interval    int        `json:"interval"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	NextRunDate time.Time  `json:"next_run_date"`
	Tags        []string   `json:"tags,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (t *RecurringTemplate) Validate() error {
	if t.Amount < 0 {
		return errors.NewValidationError("Amount must not be negative")
	}
	if !IsValidTransactionType(t.Type) {
		return errors.NewValidationError("Type must be 'income', 'expense' or 'transfer'")
	}
	if t.Description == "" {
		return errors.NewValidationError("Description is required")
	}
	if !IsValidFrequency(t.Frequency) {
		return errors.NewValidationError("Frequency must be 'daily', 'weekly', 'monthly' or 'yearly'")
	}
	if t.Interval < 1 {
		return errors.NewValidationError("Interval must be at least 1")
	}
	if t.StartDate.IsZero() {
		return errors.NewValidationError("Start date is required")
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return errors.NewValidationError("End date must not precede the start date")
	}
	return nil
}

type RecurringTemplateRepository interface {
	Save(template RecurringTemplate) error
	FindByID(templateID string) (*RecurringTemplate, error)
	FindByUser(userID string) ([]RecurringTemplate, error)
	FindActiveByUser(userID string) ([]RecurringTemplate, error)
	// FindDue returns active templates whose next run date is on or before
	// asOf and whose end date is unset or not yet passed.
	FindDue(asOf time.Time) ([]RecurringTemplate, error)
	UpdateNextRunDate(templateID string, next time.Time) error
	Deactivate(templateID string) error
}
