package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager("unit-test-secret")

	token, err := manager.GenerateAccessJWT("user-1", time.Minute)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := manager.ValidateAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	manager := NewJWTManager("unit-test-secret")

	token, err := manager.GenerateAccessJWT("user-1", -time.Minute)
	assert.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a").GenerateAccessJWT("user-1", time.Minute)
	assert.NoError(t, err)

	_, err = NewJWTManager("secret-b").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTAccessTokenMiddleware(t *testing.T) {
	manager := NewJWTManager("unit-test-secret")
	var seenUserID string
	protected := JWTAccessTokenMiddleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = r.Context().Value("userID").(string)
		w.WriteHeader(http.StatusOK)
	}))

	// missing header
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// malformed header
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// valid token
	token, err := manager.GenerateAccessJWT("user-1", time.Minute)
	assert.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", seenUserID)
}

func TestCronTokenMiddleware_EmptySecretRejectsEverything(t *testing.T) {
	protected := CronTokenMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
