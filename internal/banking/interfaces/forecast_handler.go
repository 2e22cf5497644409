package interfaces

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/application"
	bankingErrors "github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/errors"
)

type ForecastServiceInterface interface {
	GetForecast(userID string, months int) (*application.Forecast, error)
}

type ForecastHandler struct {
	service      ForecastServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewForecastHandler(
	service ForecastServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ForecastHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &ForecastHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	months := 6
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid months parameter")
			return
		}
		months = parsed
	}

	forecast, err := h.service.GetForecast(userID, months)
	if err != nil {
		if bankingErrors.IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Println("Error building forecast:", err.Error())
		h.respondError(w, http.StatusInternalServerError, "Failed to build forecast")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   forecast,
	})
}
