package interfaces

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/Lucasmagista/financial-dashboard-sub001/internal/banking/application"
)

const signatureHeader = "X-Provider-Signature"

type WebhookServiceInterface interface {
	HandleEvent(ctx context.Context, event application.Event) error
}

// WebhookHandler receives provider callbacks. The signature check runs over
// the raw body before any parsing, and the response is always fast: the
// heavy work happens in the service, which only touches local state plus a
// forced sync.
type WebhookHandler struct {
	service      WebhookServiceInterface
	secret       string
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewWebhookHandler(
	service WebhookServiceInterface,
	secret string,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *WebhookHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	return &WebhookHandler{
		service:      service,
		secret:       secret,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	if !VerifySignature(body, r.Header.Get(signatureHeader), h.secret) {
		h.respondError(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	var payload struct {
		Type string `json:"type"`
		Data struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event := application.Event{
		Type:         application.ParseEventType(payload.Type),
		ItemID:       payload.Data.ID,
		ErrorMessage: payload.Data.Error,
	}
	if err := h.service.HandleEvent(r.Context(), event); err != nil {
		log.Printf("webhook: handling %q for item %s: %v", payload.Type, event.ItemID, err)
		h.respondError(w, http.StatusInternalServerError, "Failed to process webhook")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"received": true})
}

// VerifySignature checks an HMAC-SHA256 digest of the raw body. Providers
// disagree on encoding, so both hex and base64 digests are accepted, with or
// without a "sha256=" prefix. A missing signature or an unconfigured secret
// never verifies.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if decoded, err := hex.DecodeString(signature); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	if decoded, err := base64.StdEncoding.DecodeString(signature); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	return false
}
