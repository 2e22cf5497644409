package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/infrastructure"
)

type mockSyncer struct {
	synced []string
	err    error
}

func (m *mockSyncer) Sync(_ context.Context, userID, connectionID string, windowDays int, force bool) (SyncResult, error) {
	if m.err != nil {
		return SyncResult{}, m.err
	}
	m.synced = append(m.synced, connectionID)
	return SyncResult{AccountsSynced: 1}, nil
}

func newWebhookService() (*WebhookService, *infrastructure.MockConnectionRepository, *mockSyncer) {
	connections := infrastructure.NewMockConnectionRepository()
	syncer := &mockSyncer{}
	return NewWebhookService(connections, syncer), connections, syncer
}

func activeConnection(id, itemID string) *domain.Connection {
	return &domain.Connection{
		ID: id, UserID: "user-1", InstitutionID: "201", InstitutionName: "Banco Azul",
		ProviderItemID: itemID, Status: domain.ConnectionStatusActive,
	}
}

func TestParseEventType(t *testing.T) {
	assert.Equal(t, EventItemCreated, ParseEventType("item/created"))
	assert.Equal(t, EventItemDeleted, ParseEventType("item/deleted"))
	assert.Equal(t, EventUnknown, ParseEventType("item/some_future_event"))
	assert.Equal(t, EventUnknown, ParseEventType(""))
}

func TestHandleEvent_UpdatedTriggersSync(t *testing.T) {
	service, connections, syncer := newWebhookService()
	connections.Connections["conn-1"] = activeConnection("conn-1", "item-1")

	err := service.HandleEvent(context.Background(), Event{Type: EventItemUpdated, ItemID: "item-1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"conn-1"}, syncer.synced)
}

func TestHandleEvent_LoginSucceededClearsErrorFirst(t *testing.T) {
	service, connections, syncer := newWebhookService()
	message := "Credenciais expiradas"
	connection := activeConnection("conn-1", "item-1")
	connection.Status = domain.ConnectionStatusError
	connection.ErrorMessage = &message
	connections.Connections["conn-1"] = connection

	err := service.HandleEvent(context.Background(), Event{Type: EventItemLoginSucceeded, ItemID: "item-1"})
	assert.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusActive, connections.Connections["conn-1"].Status)
	assert.Nil(t, connections.Connections["conn-1"].ErrorMessage)
	assert.Equal(t, []string{"conn-1"}, syncer.synced)
}

func TestHandleEvent_SyncFailureIsNotPropagated(t *testing.T) {
	service, connections, syncer := newWebhookService()
	connections.Connections["conn-1"] = activeConnection("conn-1", "item-1")
	syncer.err = assert.AnError

	// the sync records the failure on the connection itself; the webhook
	// must still be acknowledged
	err := service.HandleEvent(context.Background(), Event{Type: EventItemCreated, ItemID: "item-1"})
	assert.NoError(t, err)
}

func TestHandleEvent_ErrorMarksConnection(t *testing.T) {
	service, connections, _ := newWebhookService()
	connections.Connections["conn-1"] = activeConnection("conn-1", "item-1")

	err := service.HandleEvent(context.Background(), Event{
		Type: EventItemLoginFailed, ItemID: "item-1", ErrorMessage: "Senha inválida",
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusError, connections.Connections["conn-1"].Status)
	assert.Equal(t, "Senha inválida", *connections.Connections["conn-1"].ErrorMessage)
}

func TestHandleEvent_ErrorWithoutMessageGetsDefault(t *testing.T) {
	service, connections, _ := newWebhookService()
	connections.Connections["conn-1"] = activeConnection("conn-1", "item-1")

	err := service.HandleEvent(context.Background(), Event{Type: EventItemError, ItemID: "item-1"})
	assert.NoError(t, err)
	assert.Equal(t, "The institution reported an error", *connections.Connections["conn-1"].ErrorMessage)
}

func TestHandleEvent_DeletedRemovesConnection(t *testing.T) {
	service, connections, _ := newWebhookService()
	connections.Connections["conn-1"] = activeConnection("conn-1", "item-1")

	err := service.HandleEvent(context.Background(), Event{Type: EventItemDeleted, ItemID: "item-1"})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(connections.Connections))
}

func TestHandleEvent_UnknownConnectionIgnored(t *testing.T) {
	service, _, syncer := newWebhookService()

	err := service.HandleEvent(context.Background(), Event{Type: EventItemUpdated, ItemID: "ghost"})
	assert.NoError(t, err)
	assert.Empty(t, syncer.synced)
}

func TestHandleEvent_UnknownEventTypeIgnored(t *testing.T) {
	service, connections, syncer := newWebhookService()
	connections.Connections["conn-1"] = activeConnection("conn-1", "item-1")

	err := service.HandleEvent(context.Background(), Event{Type: EventUnknown, ItemID: "item-1"})
	assert.NoError(t, err)
	assert.Empty(t, syncer.synced)
	assert.Equal(t, domain.ConnectionStatusActive, connections.Connections["conn-1"].Status)
}
