package interfaces

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/application"
	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/domain"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type ConnectionServiceInterface interface {
	Connect(ctx context.Context, userID, institutionID, institutionName, providerItemID string) (*domain.Connection, error)
	Sync(ctx context.Context, userID, connectionID string, windowDays int, force bool) (application.SyncResult, error)
	Disconnect(userID, connectionID string) error
	List(userID string) ([]domain.Connection, error)
}

type ConnectionHandler struct {
	service      ConnectionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewConnectionHandler(
	service ConnectionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ConnectionHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &ConnectionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *ConnectionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		InstitutionID   string `json:"institution_id"`
		InstitutionName string `json:"institution_name"`
		ProviderItemID  string `json:"provider_item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	connection, err := h.service.Connect(r.Context(), userID, req.InstitutionID, req.InstitutionName, req.ProviderItemID)
	if err != nil {
		if bankingErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Println("Error during connection creation:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to create connection")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Connection successfully created.",
		"data":    connection,
	})
}

func (h *ConnectionHandler) GetConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	connections, err := h.service.List(userID)
	if err != nil {
		log.Println("Error fetching connections:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch connections")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   connections,
	})
}

func (h *ConnectionHandler) SyncConnection(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	connectionID := r.PathValue("id")
	if connectionID == "" {
		h.respondError(w, http.StatusBadRequest, "Connection id is required")
		return
	}

	result, err := h.service.Sync(r.Context(), userID, connectionID, 0, true)
	if err != nil {
		switch {
		case bankingErrors.IsNotFoundError(err):
			h.respondError(w, http.StatusNotFound, err.Error())
		case bankingErrors.IsValidationError(err):
			h.respondError(w, http.StatusBadRequest, err.Error())
		case bankingErrors.IsProviderError(err):
			h.respondError(w, http.StatusBadGateway, "The institution could not be reached")
		default:
			log.Println("Error during connection sync:", err.Error())
			h.respondError(w, http.StatusInternalServerError, "Failed to sync connection")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

func (h *ConnectionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	connectionID := r.PathValue("id")
	if connectionID == "" {
		h.respondError(w, http.StatusBadRequest, "Connection id is required")
		return
	}

	if err := h.service.Disconnect(userID, connectionID); err != nil {
		if bankingErrors.IsNotFoundError(err) {
			h.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Println("Error during disconnect:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to disconnect")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Connection successfully disconnected.",
	})
}
