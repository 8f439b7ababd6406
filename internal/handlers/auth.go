package handlers

import (
	"net/http"

	"finance/internal/services"

	log "github.com/sirupsen/logrus"
)

type loginForm struct {
	Username string
	Password string
	Next     string
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
}

type registerForm struct {
	Username     string
	Password     string
	Confirmation string
}

func parseRegisterForm(r *http.Request) registerForm {
	return registerForm{
		Username:     r.PostFormValue("username"),
		Password:     r.PostFormValue("password"),
		Confirmation: r.PostFormValue("confirmation"),
	}
}

type changePasswordForm struct {
	Current      string
	Password     string
	Confirmation string
}

func parseChangePasswordForm(r *http.Request) changePasswordForm {
	return changePasswordForm{
		Current:      r.PostFormValue("current_password"),
		Password:     r.PostFormValue("new_password"),
		Confirmation: r.PostFormValue("new_password_confirmation"),
	}
}

type loginView struct {
	Next string
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", loginView{Next: r.URL.Query().Get("next")})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r = h.revokeSession(r)
	form := parseLoginForm(r)
	userID, err := h.accounts.Authenticate(r.Context(), services.LoginRequest{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		h.clearCookie(w)
		h.fail(w, r, err)
		return
	}
	if _, err := h.startSession(w, userID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, safeNext(form.Next), http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if userID := currentUser(r); userID != "" {
		if err := h.accounts.Logout(r.Context(), userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("audit logout failed")
		}
	}
	h.revokeSession(r)
	h.clearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register.html", nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form := parseRegisterForm(r)
	userID, err := h.accounts.Register(r.Context(), services.RegisterRequest{
		Username:     form.Username,
		Password:     form.Password,
		Confirmation: form.Confirmation,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	r = h.revokeSession(r)
	session, err := h.startSession(w, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.sessions.AddFlash(session.ID, "Registered!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Check reports whether a username is still available, for the registration
// form.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	available, err := h.accounts.UsernameAvailable(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		log.WithError(err).Error("check username")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, available)
}

func (h *Handler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "change_password.html", nil)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	form := parseChangePasswordForm(r)
	err := h.accounts.ChangePassword(r.Context(), services.ChangePasswordRequest{
		UserID:       currentUser(r),
		Current:      form.Current,
		Password:     form.Password,
		Confirmation: form.Confirmation,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.flash(r, "Password changed!")
	http.Redirect(w, r, "/change_password", http.StatusSeeOther)
}
