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

func TestCreateCategory_Created(t *testing.T) {
	body := `{"name":"Alimentação","type":"expense"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/categories", strings.NewReader(body)))
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)
	handler.CreateCategory(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	body := `{"name":"Alimentação","type":"expense"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/protected/categories", strings.NewReader(body)))
	w := httptest.NewRecorder()

	mockService := &MockCategoryService{err: bankingErrors.NewValidationError("Category already exists")}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)
	handler.CreateCategory(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Category already exists", response["message"])
}

func TestGetCategories_OK(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/protected/categories", nil))
	w := httptest.NewRecorder()

	mockService := &MockCategoryService{
		categories: []domain.Category{
			{ID: "cat-1", Name: "Alimentação", Type: "expense"},
			{ID: "cat-2", Name: "Salário", Type: "income"},
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)
	handler.GetCategories(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []domain.Category `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, len(response.Data))
}

func TestGetCategories_EmptyIsArray(t *testing.T) {
	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/protected/categories", nil))
	w := httptest.NewRecorder()

	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)
	handler.GetCategories(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}
