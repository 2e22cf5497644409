package domain

import (
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

const (
	ConnectionStatusActive   = "active"
	ConnectionStatusError    = "error"
	ConnectionStatusInactive = "inactive"
)

// Connection is a user's authorized link to one financial institution through
// the Open Finance aggregator, keyed by the provider's item id.
type Connection struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	InstitutionID   string     `json:"institution_id"`
	InstitutionName string     `json:"institution_name"`
	ProviderItemID  string     `json:"provider_item_id"`
	Status          string     `json:"status"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (c *Connection) Validate() error {
	if c.UserID == "" {
		return errors.NewValidationError("User is required")
	}
	if c.InstitutionID == "" {
		return errors.NewValidationError("Institution is required")
	}
	if c.ProviderItemID == "" {
		return errors.NewValidationError("Provider item id is required")
	}
	return nil
}

type ConnectionRepository interface {
	Save(connection Connection) error
	FindByID(connectionID string) (*Connection, error)
	FindByProviderItemID(itemID string) (*Connection, error)
	FindByUser(userID string) ([]Connection, error)
	FindActiveOrderedByStaleness(limit int) ([]Connection, error)
	UpdateStatus(connectionID, status string, errorMessage *string) error
	UpdateLastSync(connectionID string, syncedAt time.Time) error
	Delete(connectionID string) error
}
