package handler

import (
	"net/http"

	"github.com/inotebook/inotebook-go/internal/middleware"
	"github.com/inotebook/inotebook-go/internal/model"
	"github.com/inotebook/inotebook-go/internal/service"
)

// AuthHandler handles HTTP requests for accounts and password reset.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /api/auth/createuser requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGetUser handles POST /api/auth/getuser requests.
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// HandleUpdateName handles PUT /api/auth/update-user-data/{id} requests.
func (h *AuthHandler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := userAndTarget(w, r)
	if !ok {
		return
	}

	var req model.UpdateNameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.service.UpdateName(r.Context(), userID, targetID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": "Name updated",
		"user":     user,
	})
}

// HandleAuthenticate handles POST /api/auth/authenticate/{id} requests.
func (h *AuthHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := userAndTarget(w, r)
	if !ok {
		return
	}

	var req model.AuthenticateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.Reauthenticate(r.Context(), userID, targetID, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "authenticated": true})
}

// HandleUpdateEmail handles PUT and POST /api/auth/update-user-email/{id} requests.
func (h *AuthHandler) HandleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := userAndTarget(w, r)
	if !ok {
		return
	}

	var req model.UpdateEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.service.UpdateEmail(r.Context(), userID, targetID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": "Email updated",
		"user":     user,
	})
}

// HandleUpdatePassword handles PUT /api/auth/update-user-password/{id} requests.
func (h *AuthHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := userAndTarget(w, r)
	if !ok {
		return
	}

	var req model.UpdatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	change, err := h.service.UpdatePassword(r.Context(), userID, targetID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !change.Changed {
		writeJSON(w, http.StatusOK, message(false, "New password must be different from the current password"))
		return
	}

	writeJSON(w, http.StatusOK, message(true, "Password updated"))
}

// HandleDeleteUser handles DELETE /api/auth/delete-user/{id} requests.
func (h *AuthHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := userAndTarget(w, r)
	if !ok {
		return
	}

	var req model.DeleteUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deleted, err := h.service.DeleteAccount(r.Context(), userID, targetID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"response":    "Account deleted",
		"deletedUser": deleted,
	})
}

// HandleForgotPassword handles POST /api/auth/forgot-password requests.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, message(true, "OTP sent to your email"))
}

// HandleVerifyOTP handles POST /api/auth/verify-otp requests.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	verified, err := h.service.VerifyOTP(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !verified {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":  false,
			"verified": false,
			"response": "Invalid OTP",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "verified": true})
}

// HandleResetPassword handles PUT /api/auth/forgot-update-password requests.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.ResetPasswordByOTP(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, message(true, "Password updated"))
}

// requireUser returns the authenticated user id set by middleware.Authenticate.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return "", false
	}
	return userID, true
}

func userAndTarget(w http.ResponseWriter, r *http.Request) (userID, targetID string, ok bool) {
	if userID, ok = requireUser(w, r); !ok {
		return "", "", false
	}
	if targetID, ok = pathID(w, r); !ok {
		return "", "", false
	}
	return userID, targetID, true
}
