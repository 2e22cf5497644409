package interfaces

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type CategoryServiceInterface interface {
	CreateCategory(category *domain.Category) error
	GetUserCategories(userID string) ([]domain.Category, error)
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CategoryHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category.UserID = userID
	if err := h.service.CreateCategory(&category); err != nil {
		if bankingErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Println("Error during category creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    category,
	})
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	categories, err := h.service.GetUserCategories(userID)
	if err != nil {
		log.Println("Error fetching categories:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   categories,
	})
}
