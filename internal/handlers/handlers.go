package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"finance/internal/auth"
	"finance/internal/middleware"
	"finance/internal/services"
	"finance/internal/validator"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

var badRequestMessages = map[error]string{
	validator.ErrMissingField:      "must provide all fields",
	validator.ErrPasswordMismatch:  "passwords don't match",
	validator.ErrInvalidUsername:   "invalid username",
	validator.ErrInvalidShareCount: "shares must be a positive integer",
	services.ErrInvalidAmount:      "amount must be a positive number with at most two decimals",
	services.ErrUnknownSymbol:      "invalid symbol",
	services.ErrInsufficientFunds:  "can't afford",
	services.ErrInsufficientShares: "too many shares",
	services.ErrDuplicateUsername:  "username taken",
}

// errorResponse maps a service error onto a status code and a message that
// is safe to show the user.
func errorResponse(err error) (int, string) {
	for target, message := range badRequestMessages {
		if errors.Is(err, target) {
			return http.StatusBadRequest, message
		}
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusForbidden, "invalid username and/or password"
	case errors.Is(err, services.ErrQuoteUnavailable):
		return http.StatusServiceUnavailable, "quote service unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"request_id": chimiddleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	h.apology(w, r, status, message)
}

func (h *Handler) flash(r *http.Request, message string) {
	if sessionID, ok := middleware.SessionIDFromContext(r.Context()); ok {
		h.sessions.AddFlash(sessionID, message)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, userID string) (auth.Session, error) {
	session := h.sessions.Create(userID)
	token, err := auth.GenerateToken(h.cfg.SessionSecret, session.ID, userID, h.cfg.SessionTTL)
	if err != nil {
		h.sessions.Delete(session.ID)
		return auth.Session{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

// revokeSession drops the server-side session and returns r without an
// identity.
func (h *Handler) revokeSession(r *http.Request) *http.Request {
	if sessionID, ok := middleware.SessionIDFromContext(r.Context()); ok {
		h.sessions.Delete(sessionID)
	}
	return r.WithContext(middleware.WithSession(r.Context(), "", ""))
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext only follows local paths so the login form cannot be used as an
// open redirect.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func currentUser(r *http.Request) string {
	userID, _ := middleware.UserIDFromContext(r.Context())
	return userID
}
