package interfaces

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type RecurringServiceInterface interface {
	CreateTemplate(template *domain.RecurringTemplate) error
	ListTemplates(userID string) ([]domain.RecurringTemplate, error)
	DeactivateTemplate(templateID, userID string) error
}

type RecurringHandler struct {
	service      RecurringServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewRecurringHandler(
	service RecurringServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *RecurringHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &RecurringHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *RecurringHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		AccountID   string   `json:"account_id"`
		CategoryID  *string  `json:"category_id"`
		Amount      float64  `json:"amount"`
		Type        string   `json:"type"`
		Description string   `json:"description"`
		Frequency   string   `json:"frequency"`
		Interval    int      `json:"interval"`
		StartDate   string   `json:"start_date"`
		EndDate     *string  `json:"end_date"`
		Tags        []string `json:"tags"`
		Notes       string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid start_date format, expected YYYY-MM-DD")
		return
	}
	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid end_date format, expected YYYY-MM-DD")
			return
		}
		endDate = &parsed
	}

	template := domain.RecurringTemplate{
		UserID:      userID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Frequency:   req.Frequency,
		Interval:    req.Interval,
		StartDate:   startDate,
		EndDate:     endDate,
		Tags:        req.Tags,
		Notes:       req.Notes,
	}
	if err := h.service.CreateTemplate(&template); err != nil {
		if bankingErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Println("Error during template creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create recurring template")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Recurring template successfully created.",
		"data":    template,
	})
}

func (h *RecurringHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	templates, err := h.service.ListTemplates(userID)
	if err != nil {
		log.Println("Error fetching templates:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch recurring templates")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   templates,
	})
}

func (h *RecurringHandler) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	templateID := r.PathValue("id")
	if templateID == "" {
		h.respondError(w, http.StatusBadRequest, "Template id is required")
		return
	}

	if err := h.service.DeactivateTemplate(templateID, userID); err != nil {
		if bankingErrors.IsNotFoundError(err) {
			h.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Println("Error during template deactivation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to deactivate recurring template")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Recurring template successfully deactivated.",
	})
}
