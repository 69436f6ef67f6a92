package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"chmura-plikow/internal/auth"
	"chmura-plikow/internal/database"
	"chmura-plikow/internal/models"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2" example:"Jan Kowalski"`
	Email    string `json:"email" validate:"required,email" example:"jan@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"password123"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jan@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type AuthResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// @Summary      Register a new account
// @Description  Creates a user account and returns a token valid for 7 days together with the public user profile.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupRequest  body      SignupRequest  true  "Registration data"
// @Success      201            {object}  AuthResponse
// @Failure      400            {object}  messageResponse
// @Failure      409            {object}  messageResponse "Email already registered"
// @Failure      500            {object}  messageResponse
// @Router       /auth/signup [post]
func (s *Server) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("ERROR: Nie można zahashować hasła: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("ERROR: Nie można utworzyć użytkownika: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := auth.GenerateJWT(user, s.config.JWT.Secret)
	if err != nil {
		log.Printf("ERROR: Nie można wygenerować tokenu: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user.Public()})
}

// @Summary      Log in
// @Description  Authenticates by email and password and returns a token valid for 7 days. Logout is client-side only (discard the token).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login credentials"
// @Success      200           {object}  AuthResponse
// @Failure      400           {object}  messageResponse
// @Failure      401           {object}  messageResponse "Invalid credentials"
// @Failure      500           {object}  messageResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać użytkownika: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user, s.config.JWT.Secret)
	if err != nil {
		log.Printf("ERROR: Nie można wygenerować tokenu: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user.Public()})
}

type MeResponse struct {
	User models.PublicUser `json:"user"`
}

// @Summary      Get current user
// @Description  Returns the public profile of the authenticated user, including storage usage and effective limit.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /auth/me [get]
func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać użytkownika %d: %v", claims.UserID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{User: user.Public()})
}
