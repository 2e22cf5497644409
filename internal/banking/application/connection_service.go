package application

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/provider"
)

const (
	defaultSyncWindowDays = 30
	initialSyncWindowDays = 365
	syncAllBatchLimit     = 50
	minSyncInterval       = 30 * time.Minute
)

// MergeServiceInterface is the slice of the merge engine the connection
// manager drives.
type MergeServiceInterface interface {
	MergeAccount(providerAccount provider.Account, connection domain.Connection) (string, error)
	MergeTransactions(ctx context.Context, providerAccountID, localAccountID, userID string, fromDate time.Time) (int, error)
}

type SyncResult struct {
	AccountsSynced     int `json:"accounts_synced"`
	TransactionsSynced int `json:"transactions_synced"`
}

type SyncAllResult struct {
	Connections        int `json:"connections"`
	AccountsSynced     int `json:"accounts_synced"`
	TransactionsSynced int `json:"transactions_synced"`
	Failed             int `json:"failed"`
}

// ConnectionService owns the connection lifecycle (pending → active →
// error/inactive) and drives the merge engine during syncs.
type ConnectionService struct {
	connections domain.ConnectionRepository
	accounts    domain.AccountRepository
	provider    ProviderGateway
	merge       MergeServiceInterface
}

func NewConnectionService(connections domain.ConnectionRepository, accounts domain.AccountRepository, providerGateway ProviderGateway, merge MergeServiceInterface) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		accounts:    accounts,
		provider:    providerGateway,
		merge:       merge,
	}
}

// Connect persists a new connection optimistically in active status and runs
// the initial sync. A failed first sync leaves the connection in error status
// with a message; it is never rolled back, so the user can retry it.
func (s *ConnectionService) Connect(ctx context.Context, userID, institutionID, institutionName, providerItemID string) (*domain.Connection, error) {
	connection := domain.Connection{
		ID:              uuid.NewString(),
		UserID:          userID,
		InstitutionID:   institutionID,
		InstitutionName: institutionName,
		ProviderItemID:  providerItemID,
		Status:          domain.ConnectionStatusActive,
		CreatedAt:       time.Now(),
	}
	if err := connection.Validate(); err != nil {
		return nil, err
	}
	if err := s.connections.Save(connection); err != nil {
		return nil, err
	}

	if _, err := s.Sync(ctx, connection.UserID, connection.ID, initialSyncWindowDays, true); err != nil {
		// Sync already flagged the connection; surface the stored state.
		log.Printf("initial sync failed for connection %s: %v", connection.ID, err)
	}

	return s.connections.FindByID(connection.ID)
}

// Sync fetches the connection's provider accounts and hands each one to the
// merge engine. A failure on one account is logged and does not abort the
// rest; last_sync_at moves forward only after the whole pass. A connection
// owned by another user looks exactly like a missing one.
func (s *ConnectionService) Sync(ctx context.Context, userID, connectionID string, windowDays int, force bool) (SyncResult, error) {
	connection, err := s.connections.FindByID(connectionID)
	if err != nil {
		return SyncResult{}, err
	}
	if connection == nil || connection.UserID != userID {
		return SyncResult{}, bankingErrors.NewNotFoundError("Connection not found")
	}
	if connection.Status == domain.ConnectionStatusInactive {
		return SyncResult{}, bankingErrors.NewValidationError("Connection is disconnected")
	}
	if !force && connection.LastSyncAt != nil && time.Since(*connection.LastSyncAt) < minSyncInterval {
		return SyncResult{}, nil
	}
	if windowDays <= 0 {
		windowDays = defaultSyncWindowDays
	}

	providerAccounts, err := s.provider.ListAccounts(ctx, connection.ProviderItemID)
	if err != nil {
		message := "The institution could not be reached"
		if updateErr := s.connections.UpdateStatus(connection.ID, domain.ConnectionStatusError, &message); updateErr != nil {
			log.Printf("sync %s: marking connection as errored: %v", connection.ID, updateErr)
		}
		return SyncResult{}, bankingErrors.NewProviderError("could not list provider accounts", err)
	}

	var result SyncResult
	fromDate := time.Now().AddDate(0, 0, -windowDays)
	for _, providerAccount := range providerAccounts {
		localAccountID, err := s.merge.MergeAccount(providerAccount, *connection)
		if err != nil {
			log.Printf("sync %s: merging account %s: %v", connection.ID, providerAccount.ID, err)
			continue
		}
		result.AccountsSynced++

		count, err := s.merge.MergeTransactions(ctx, providerAccount.ID, localAccountID, connection.UserID, fromDate)
		if err != nil {
			// transactions for this account are retried on the next sync
			log.Printf("sync %s: merging transactions for account %s: %v", connection.ID, providerAccount.ID, err)
			continue
		}
		result.TransactionsSynced += count
	}

	if err := s.connections.UpdateStatus(connection.ID, domain.ConnectionStatusActive, nil); err != nil {
		return result, err
	}
	if err := s.connections.UpdateLastSync(connection.ID, time.Now()); err != nil {
		return result, err
	}
	return result, nil
}

// Disconnect marks the connection inactive and soft-deactivates the accounts
// that came from it. Transaction history stays. Disconnecting a missing or
// already inactive connection is a no-op; another user's connection is
// reported as not found.
func (s *ConnectionService) Disconnect(userID, connectionID string) error {
	connection, err := s.connections.FindByID(connectionID)
	if err != nil {
		return err
	}
	if connection == nil {
		return nil
	}
	if connection.UserID != userID {
		return bankingErrors.NewNotFoundError("Connection not found")
	}
	if connection.Status == domain.ConnectionStatusInactive {
		return nil
	}

	if err := s.connections.UpdateStatus(connection.ID, domain.ConnectionStatusInactive, nil); err != nil {
		return err
	}
	deactivated, err := s.accounts.DeactivateByBank(connection.UserID, connection.InstitutionName)
	if err != nil {
		return err
	}
	log.Printf("disconnect %s: deactivated %d accounts", connection.ID, deactivated)
	return nil
}

// SyncAll iterates active connections ordered by staleness (oldest sync
// first) up to the batch cap, isolating failures per connection.
func (s *ConnectionService) SyncAll(ctx context.Context, limit int) (SyncAllResult, error) {
	if limit <= 0 || limit > syncAllBatchLimit {
		limit = syncAllBatchLimit
	}
	connections, err := s.connections.FindActiveOrderedByStaleness(limit)
	if err != nil {
		return SyncAllResult{}, err
	}

	var result SyncAllResult
	for _, connection := range connections {
		syncResult, err := s.Sync(ctx, connection.UserID, connection.ID, defaultSyncWindowDays, false)
		if err != nil {
			log.Printf("sync-all: connection %s failed: %v", connection.ID, err)
			result.Failed++
			continue
		}
		result.Connections++
		result.AccountsSynced += syncResult.AccountsSynced
		result.TransactionsSynced += syncResult.TransactionsSynced
	}
	return result, nil
}

func (s *ConnectionService) List(userID string) ([]domain.Connection, error) {
	connections, err := s.connections.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if connections == nil {
		return []domain.Connection{}, nil
	}
	return connections, nil
}
