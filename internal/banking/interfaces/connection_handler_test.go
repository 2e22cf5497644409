package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/application"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/infrastructure"
)

func authenticated(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "userID", "user-1"))
}

func TestConnect_Created(t *testing.T) {
	body := `{"institution_id":"201","institution_name":"Banco Azul","provider_item_id":"item-1"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/connections", strings.NewReader(body)))
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{
		connection: &domain.Connection{ID: "conn-1", Status: domain.ConnectionStatusActive},
	}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.Connect(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "success", response["status"])
}

func TestConnect_Unauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/protected/connections", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	handler := NewConnectionHandler(&MockConnectionService{}, respondJSON, respondError)
	handler.Connect(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConnect_ValidationError(t *testing.T) {
	body := `{"institution_id":"","provider_item_id":""}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/connections", strings.NewReader(body)))
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{err: bankingErrors.NewValidationError("Institution is required")}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.Connect(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Institution is required", response["message"])
}

func TestGetConnections_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/protected/connections", nil))
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{
		connections: []domain.Connection{{ID: "conn-1"}, {ID: "conn-2"}},
	}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.GetConnections(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []domain.Connection `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, len(response.Data))
}

func TestSyncConnection_NotFound(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/connections/ghost/sync", nil))
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{err: bankingErrors.NewNotFoundError("Connection not found")}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.SyncConnection(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncConnection_ProviderDown(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/connections/conn-1/sync", nil))
	req.SetPathValue("id", "conn-1")
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{err: bankingErrors.NewProviderError("could not list provider accounts", nil)}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.SyncConnection(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSyncConnection_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/connections/conn-1/sync", nil))
	req.SetPathValue("id", "conn-1")
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{syncResult: application.SyncResult{AccountsSynced: 2, TransactionsSynced: 10}}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.SyncConnection(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"conn-1"}, mockService.synced)
}

func TestDisconnect_NotFound(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/protected/connections/conn-b", nil))
	req.SetPathValue("id", "conn-b")
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{err: bankingErrors.NewNotFoundError("Connection not found")}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.Disconnect(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisconnect_OtherUsersConnectionUntouched(t *testing.T) {
	connections := infrastructure.NewMockConnectionRepository()
	accounts := infrastructure.NewMockAccountRepository()
	transactions := infrastructure.NewMockTransactionRepository()
	gateway := application.NewMockProviderGateway()
	merge := application.NewMergeService(accounts, transactions, gateway)
	service := application.NewConnectionService(connections, accounts, gateway, merge)

	connections.Connections["conn-b"] = &domain.Connection{
		ID: "conn-b", UserID: "user-b", InstitutionID: "201", InstitutionName: "Banco Azul",
		ProviderItemID: "item-1", Status: domain.ConnectionStatusActive,
	}
	externalID := "acc-ext-1"
	accounts.Accounts["acc-b"] = &domain.Account{
		ID: "acc-b", UserID: "user-b", BankName: "Banco Azul", ExternalID: &externalID, IsActive: true,
	}

	// authenticated as user-1, targeting user-b's connection
	req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/protected/connections/conn-b", nil))
	req.SetPathValue("id", "conn-b")
	w := httptest.NewRecorder()

	handler := NewConnectionHandler(service, respondJSON, respondError)
	handler.Disconnect(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.ConnectionStatusActive, connections.Connections["conn-b"].Status)
	assert.True(t, accounts.Accounts["acc-b"].IsActive)
}

func TestDisconnect_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/protected/connections/conn-1", nil))
	req.SetPathValue("id", "conn-1")
	w := httptest.NewRecorder()

	mockService := &MockConnectionService{}
	handler := NewConnectionHandler(mockService, respondJSON, respondError)
	handler.Disconnect(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"conn-1"}, mockService.disconnected)
}
