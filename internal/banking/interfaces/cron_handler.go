package interfaces

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/application"
)

type SyncAllServiceInterface interface {
	SyncAll(ctx context.Context, limit int) (application.SyncAllResult, error)
}

type RecurringProcessorInterface interface {
	ProcessDue(asOf time.Time) (application.ProcessResult, error)
}

// CronHandler backs the internal endpoints hit by the schedulers. Auth is the
// cron bearer token middleware, not user JWTs.
type CronHandler struct {
	connections  SyncAllServiceInterface
	recurring    RecurringProcessorInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCronHandler(
	connections SyncAllServiceInterface,
	recurring RecurringProcessorInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CronHandler {
	if connections == nil || recurring == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &CronHandler{
		connections:  connections,
		recurring:    recurring,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CronHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.connections.SyncAll(r.Context(), 0)
	if err != nil {
		log.Println("Error during batch sync:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to run batch sync")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

func (h *CronHandler) ProcessRecurring(w http.ResponseWriter, r *http.Request) {
	result, err := h.recurring.ProcessDue(time.Now())
	if err != nil {
		log.Println("Error during recurring processing:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to process recurring transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}
