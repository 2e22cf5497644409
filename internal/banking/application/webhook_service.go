package application

import (
	"context"
	"log"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
)

// EventType enumerates the provider webhook events the pipeline reacts to.
// Adding a handler for a new provider event means adding a constant here and
// a case to HandleEvent, not editing a string table.
type EventType string

const (
	EventItemCreated        EventType = "item/created"
	EventItemUpdated        EventType = "item/updated"
	EventItemLoginSucceeded EventType = "item/login_succeeded"
	EventItemError          EventType = "item/error"
	EventItemLoginFailed    EventType = "item/login_failed"
	EventItemDeleted        EventType = "item/deleted"
	EventUnknown            EventType = ""
)

func ParseEventType(raw string) EventType {
	switch EventType(raw) {
	case EventItemCreated, EventItemUpdated, EventItemLoginSucceeded,
		EventItemError, EventItemLoginFailed, EventItemDeleted:
		return EventType(raw)
	}
	return EventUnknown
}

type Event struct {
	Type         EventType
	ItemID       string
	ErrorMessage string
}

// ConnectionSyncer is the slice of the connection manager the webhook
// processor drives.
type ConnectionSyncer interface {
	Sync(ctx context.Context, userID, connectionID string, windowDays int, force bool) (SyncResult, error)
}

// WebhookService translates provider events into connection state changes.
// Events arrive with no ordering guarantee, so every handler is a
// last-write-wins update keyed by the provider item id, and replaying an
// event is harmless.
type WebhookService struct {
	connections domain.ConnectionRepository
	syncer      ConnectionSyncer
}

func NewWebhookService(connections domain.ConnectionRepository, syncer ConnectionSyncer) *WebhookService {
	return &WebhookService{connections: connections, syncer: syncer}
}

func (s *WebhookService) HandleEvent(ctx context.Context, event Event) error {
	connection, err := s.connections.FindByProviderItemID(event.ItemID)
	if err != nil {
		return err
	}
	if connection == nil {
		log.Printf("webhook: no connection for item %s, ignoring %q", event.ItemID, event.Type)
		return nil
	}

	switch event.Type {
	case EventItemCreated, EventItemUpdated, EventItemLoginSucceeded:
		if event.Type == EventItemLoginSucceeded {
			// clears any stale error_message before the sync runs
			if err := s.connections.UpdateStatus(connection.ID, domain.ConnectionStatusActive, nil); err != nil {
				return err
			}
		}
		if _, err := s.syncer.Sync(ctx, connection.UserID, connection.ID, defaultSyncWindowDays, true); err != nil {
			// the sync already recorded the error on the connection
			log.Printf("webhook: sync for connection %s: %v", connection.ID, err)
		}
		return nil

	case EventItemError, EventItemLoginFailed:
		message := event.ErrorMessage
		if message == "" {
			message = "The institution reported an error"
		}
		return s.connections.UpdateStatus(connection.ID, domain.ConnectionStatusError, &message)

	case EventItemDeleted:
		// accounts and transactions stay as historical data
		return s.connections.Delete(connection.ID)

	case EventUnknown:
		log.Printf("webhook: unknown event type for item %s, ignoring", event.ItemID)
		return nil
	}
	return nil
}
