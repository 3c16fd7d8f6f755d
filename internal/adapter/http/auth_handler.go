package http

import (
	"encoding/json"
	"net/http"

	"bakeshop/internal/adapter/auth"
	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/app/session"
)

type AuthHandler struct {
	provider *auth.Provider
	session  *session.Controller
	logger   logger.Logger
}

func NewAuthHandler(provider *auth.Provider, controller *session.Controller, lgr logger.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, session: controller, logger: lgr}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.provider.SignUp(r.Context(), req.Email, req.Password, req.FullName); err != nil {
		respondAuthError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"user_id": h.provider.CurrentUserID()})
}

func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.provider.SignIn(r.Context(), req.Email, req.Password); err != nil {
		respondAuthError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"user_id": h.provider.CurrentUserID()})
}

func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := h.provider.SignOut(r.Context()); err != nil {
		respondAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.provider.SendPasswordReset(r.Context(), req.Email); err != nil {
		respondAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) HandlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.provider.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		respondAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession reports the current session identity and profile.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID := h.session.UserID()
	resp := map[string]any{
		"signed_in": userID != "",
	}
	if userID != "" {
		resp["user_id"] = userID
		if profile := h.session.Profile(); profile != nil {
			resp["profile"] = map[string]string{
				"full_name": profile.FullName,
				"email":     profile.Email,
				"role":      profile.Role,
			}
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func respondAuthError(w http.ResponseWriter, err error) {
	category := auth.Categorize(err)
	respondJSON(w, statusForCategory(category), map[string]string{
		"error":    category.Message(),
		"category": string(category),
	})
}

func statusForCategory(category auth.Category) int {
	switch category {
	case auth.CategoryInvalidCredentials:
		return http.StatusUnauthorized
	case auth.CategoryMalformedEmail, auth.CategoryWeakPassword:
		return http.StatusBadRequest
	case auth.CategoryEmailInUse:
		return http.StatusConflict
	case auth.CategoryRateLimited:
		return http.StatusTooManyRequests
	case auth.CategoryNotVerified:
		return http.StatusForbidden
	case auth.CategoryNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
