package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chmura-plikow/internal/models"

	"github.com/stretchr/testify/require"
)

func TestSignupHandler_Success(t *testing.T) {
	// Arrange
	payload := SignupRequest{Name: "Nowy Użytkownik", Email: "signup.ok@example.com", Password: "password123"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	// Act
	http.HandlerFunc(testServer.SignupHandler).ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusCreated, rr.Code)
	var resp AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "signup.ok@example.com", resp.User.Email)
	// Nowe konto raportuje domyślny limit i zerowe zużycie
	require.Equal(t, models.DefaultStorageLimitBytes, resp.User.StorageLimitBytes)
	require.Zero(t, resp.User.UsedStorageBytes)
}

func TestSignupHandler_DuplicateEmail(t *testing.T) {
	payload := SignupRequest{Name: "Pierwszy", Email: "signup.dup@example.com", Password: "password123"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.SignupHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	// Ten sam adres inną wielkością liter -> konflikt
	payload = SignupRequest{Name: "Drugi", Email: "SIGNUP.DUP@example.com", Password: "password123"}
	body, _ = json.Marshal(payload)
	req = httptest.NewRequest("POST", "/api/v1/auth/signup", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	http.HandlerFunc(testServer.SignupHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestSignupHandler_Validation(t *testing.T) {
	cases := []struct {
		name    string
		payload SignupRequest
	}{
		{"brak adresu email", SignupRequest{Name: "Jan", Password: "password123"}},
		{"niepoprawny email", SignupRequest{Name: "Jan", Email: "nie-email", Password: "password123"}},
		{"za krótkie hasło", SignupRequest{Name: "Jan", Email: "short.pass@example.com", Password: "abc"}},
		{"za krótka nazwa", SignupRequest{Name: "J", Email: "short.name@example.com", Password: "password123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.payload)
			req := httptest.NewRequest("POST", "/api/v1/auth/signup", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			http.HandlerFunc(testServer.SignupHandler).ServeHTTP(rr, req)
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	payload := LoginRequest{Email: "api.test@example.com", Password: "password123"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, testUserClaims.UserID, resp.User.ID)

	// Logowanie nie rozróżnia wielkości liter w adresie
	payload = LoginRequest{Email: "API.TEST@example.com", Password: "password123"}
	body, _ = json.Marshal(payload)
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	// Złe hasło
	payload := LoginRequest{Email: "api.test@example.com", Password: "zle-haslo"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	// Nieistniejące konto dostaje tę samą odpowiedź
	payload = LoginRequest{Email: "nie.istnieje@example.com", Password: "password123"}
	body, _ = json.Marshal(payload)
	req = httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMeHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	rr := httptest.NewRecorder()

	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testUserClaims))
	http.HandlerFunc(testServer.MeHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp MeResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Equal(t, testUserClaims.UserID, resp.User.ID)
	require.Equal(t, "api.test@example.com", resp.User.Email)
	require.Equal(t, models.DefaultStorageLimitBytes, resp.User.StorageLimitBytes)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	rr := httptest.NewRecorder()

	testServer.AuthMiddleware(http.HandlerFunc(testServer.MeHandler)).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+testUserToken)
	rr := httptest.NewRecorder()

	testServer.AuthMiddleware(http.HandlerFunc(testServer.MeHandler)).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
