package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

func TestCreateTemplate_Created(t *testing.T) {
	body := `{"account_id":"acc-1","amount":1200,"type":"expense","description":"Aluguel","frequency":"monthly","start_date":"2024-02-05"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/recurring", strings.NewReader(body)))
	w := httptest.NewRecorder()

	handler := NewRecurringHandler(&MockRecurringService{}, respondJSON, respondError)
	handler.CreateTemplate(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateTemplate_BadStartDate(t *testing.T) {
	body := `{"account_id":"acc-1","amount":1200,"type":"expense","description":"Aluguel","frequency":"monthly","start_date":"05/02/2024"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/recurring", strings.NewReader(body)))
	w := httptest.NewRecorder()

	handler := NewRecurringHandler(&MockRecurringService{}, respondJSON, respondError)
	handler.CreateTemplate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTemplate_ServiceValidationError(t *testing.T) {
	body := `{"account_id":"acc-1","amount":1200,"type":"expense","description":"Aluguel","frequency":"fortnightly","start_date":"2024-02-05"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/recurring", strings.NewReader(body)))
	w := httptest.NewRecorder()

	mockService := &MockRecurringService{err: bankingErrors.NewValidationError("Frequency must be 'daily', 'weekly', 'monthly' or 'yearly'")}
	handler := NewRecurringHandler(mockService, respondJSON, respondError)
	handler.CreateTemplate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTemplates_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/protected/recurring", nil))
	w := httptest.NewRecorder()

	mockService := &MockRecurringService{
		templates: []domain.RecurringTemplate{{ID: "tpl-1"}, {ID: "tpl-2"}},
	}
	handler := NewRecurringHandler(mockService, respondJSON, respondError)
	handler.GetTemplates(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []domain.RecurringTemplate `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, len(response.Data))
}

func TestDeactivateTemplate_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/protected/recurring/tpl-1", nil))
	req.SetPathValue("id", "tpl-1")
	w := httptest.NewRecorder()

	mockService := &MockRecurringService{}
	handler := NewRecurringHandler(mockService, respondJSON, respondError)
	handler.DeactivateTemplate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"tpl-1"}, mockService.deactivated)
}

func TestDeactivateTemplate_NotFound(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodDelete, "/api/protected/recurring/ghost", nil))
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()

	mockService := &MockRecurringService{err: bankingErrors.NewNotFoundError("Recurring template not found")}
	handler := NewRecurringHandler(mockService, respondJSON, respondError)
	handler.DeactivateTemplate(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
