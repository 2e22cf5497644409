package interfaces

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type TransactionServiceInterface interface {
	GetUserTransactions(userID, transactionType string, startDate, endDate time.Time, limit, page int) ([]domain.Transaction, error)
}

type CategorizerServiceInterface interface {
	CategorizeTransaction(transactionID, userID string) (*domain.Transaction, error)
	CategorizePending(userID string, limit int) (int, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	categorizer  CategorizerServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	categorizer CategorizerServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil || categorizer == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &TransactionHandler{
		service:      service,
		categorizer:  categorizer,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	transactionType := query.Get("type")
	if transactionType != "" && !domain.IsValidTransactionType(transactionType) {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction type")
		return
	}

	startDate, endDate, err := parseDateRange(query.Get("start_date"), query.Get("end_date"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := parseIntOrDefault(query.Get("limit"), 50)
	page := parseIntOrDefault(query.Get("page"), 1)

	transactions, err := h.service.GetUserTransactions(userID, transactionType, startDate, endDate, limit, page)
	if err != nil {
		log.Println("Error fetching transactions:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transactions,
	})
}

// CategorizeTransaction runs auto-categorization for a single transaction.
func (h *TransactionHandler) CategorizeTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID := r.PathValue("id")
	if transactionID == "" {
		h.respondError(w, http.StatusBadRequest, "Transaction id is required")
		return
	}

	transaction, err := h.categorizer.CategorizeTransaction(transactionID, userID)
	if err != nil {
		if bankingErrors.IsNotFoundError(err) {
			h.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Println("Error during categorization:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to categorize transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   transaction,
	})
}

// CategorizePending runs auto-categorization over the user's backlog.
func (h *TransactionHandler) CategorizePending(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)
	updated, err := h.categorizer.CategorizePending(userID, limit)
	if err != nil {
		log.Println("Error during categorization:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to categorize transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   map[string]int{"categorized": updated},
	})
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate := time.Now().AddDate(0, -1, 0)
	endDate := time.Now()
	var err error
	if start != "" {
		startDate, err = time.Parse("2006-01-02", start)
		if err != nil {
			return time.Time{}, time.Time{}, bankingErrors.NewValidationError("Invalid start_date format, expected YYYY-MM-DD")
		}
	}
	if end != "" {
		endDate, err = time.Parse("2006-01-02", end)
		if err != nil {
			return time.Time{}, time.Time{}, bankingErrors.NewValidationError("Invalid end_date format, expected YYYY-MM-DD")
		}
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, bankingErrors.NewValidationError("end_date must not precede start_date")
	}
	return startDate, endDate, nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
