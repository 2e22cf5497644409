package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

func TestGetTransactions_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/protected/transactions?type=expense&start_date=2024-01-01&end_date=2024-01-31", nil))
	w := httptest.NewRecorder()

	mockService := &MockTransactionService{
		transactions: []domain.Transaction{{ID: "tx-1"}, {ID: "tx-2"}},
	}
	handler := NewTransactionHandler(mockService, &MockCategorizerService{}, respondJSON, respondError)
	handler.GetTransactions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []domain.Transaction `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, len(response.Data))
}

func TestGetTransactions_InvalidType(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/protected/transactions?type=debit", nil))
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(&MockTransactionService{}, &MockCategorizerService{}, respondJSON, respondError)
	handler.GetTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTransactions_InvalidDateRange(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/protected/transactions?start_date=2024-02-01&end_date=2024-01-01", nil))
	w := httptest.NewRecorder()

	handler := NewTransactionHandler(&MockTransactionService{}, &MockCategorizerService{}, respondJSON, respondError)
	handler.GetTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategorizeTransaction_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/transactions/tx-1/categorize", nil))
	req.SetPathValue("id", "tx-1")
	w := httptest.NewRecorder()

	categoryID := "cat-food"
	confidence := 0.9
	mockCategorizer := &MockCategorizerService{
		transaction: &domain.Transaction{
			ID: "tx-1", CategoryID: &categoryID, AutoCategorized: true, ConfidenceScore: &confidence,
		},
	}
	handler := NewTransactionHandler(&MockTransactionService{}, mockCategorizer, respondJSON, respondError)
	handler.CategorizeTransaction(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data domain.Transaction `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "cat-food", *response.Data.CategoryID)
	assert.True(t, response.Data.AutoCategorized)
}

func TestCategorizeTransaction_NotFound(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/transactions/ghost/categorize", nil))
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()

	mockCategorizer := &MockCategorizerService{err: bankingErrors.NewNotFoundError("Transaction not found")}
	handler := NewTransactionHandler(&MockTransactionService{}, mockCategorizer, respondJSON, respondError)
	handler.CategorizeTransaction(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategorizePending_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/transactions/categorize-pending", nil))
	w := httptest.NewRecorder()

	mockCategorizer := &MockCategorizerService{categorized: 7}
	handler := NewTransactionHandler(&MockTransactionService{}, mockCategorizer, respondJSON, respondError)
	handler.CategorizePending(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data map[string]int `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 7, response.Data["categorized"])
}
