package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/LucianoSainz/w5d1/internal/auth/middleware"
	"github.com/LucianoSainz/w5d1/internal/metrics"
	"github.com/LucianoSainz/w5d1/internal/models"
	"github.com/LucianoSainz/w5d1/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Messages shown to the user
const (
	msgMissingFields      = "Indicate username and password"
	msgPasswordTooLong    = "The password is too long"
	msgUsernameTaken      = "The username already exists"
	msgSomethingWentWrong = "Something went wrong"
	msgMissingCredentials = "Missing credentials"
	msgBadCredentials     = "Incorrect username or password"
	msgUnknownUser        = "Incorrect username"
	msgBadPassword        = "Incorrect password"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Signup validates the credentials and creates a user without any role.
	//
	// "req" parameter contains username and password.
	//
	// If the credentials are empty, models.ErrValidation is returned. If the username is taken, models.ErrDuplicateUsername is returned.
	// Any other failure is returned wrapped, together with "nil" value.
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error)
	// Method Authenticate checks the username and password pair and returns the matching user.
	//
	// If no user has the username, models.ErrUnknownUser is returned. If the password does not match, models.ErrBadPassword is returned.
	// Store failures wrap models.ErrStoreUnavailable.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// SessionManager is the interface that wraps the session operations used by the login flow
type SessionManager interface {
	LogIn(w http.ResponseWriter, r *http.Request, id int) (string, error)
	Clear(w http.ResponseWriter, r *http.Request) error
	AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error
	Flashes(w http.ResponseWriter, r *http.Request, kind string) ([]string, error)
}

// IdentitySerializer mints the session token for a user
type IdentitySerializer interface {
	Serialize(user *models.User) int
}

// AuthMetrics counts authentication outcomes
type AuthMetrics interface {
	ObserveLogin(result string)
	ObserveSignup(result string)
	ObserveLogout()
}

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	BaseHandler
	authService    AuthService
	sessions       SessionManager
	identity       IdentitySerializer
	metrics        AuthMetrics
	unifiedFailure bool
}

// NewAuthHandler creates a new auth handler
// When unifiedFailure is set both login failures show the same message
func NewAuthHandler(
	authService AuthService,
	sessions SessionManager,
	identity IdentitySerializer,
	metrics AuthMetrics,
	templates *template.Template,
	unifiedFailure bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    BaseHandler{logger: logger, templates: templates},
		authService:    authService,
		sessions:       sessions,
		identity:       identity,
		metrics:        metrics,
		unifiedFailure: unifiedFailure,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/signup", h.SignupPage)
	r.Post("/signup", h.Signup)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/remember", h.RememberPage)
	r.Post("/remember-password", h.RememberPassword)
}

// SignupPage handles GET /signup
// @Summary Signup form
// @Tags auth
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /signup [get]
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "base", h.page(r, "signup"))
}

// Signup handles POST /signup
// @Summary Register a new user
// @Description Create a user without any role. On success the browser is redirected to the home page, the user still has to log in.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce html
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 302 {string} string "Redirect to /"
// @Failure 400 {string} string "Missing username or password"
// @Failure 409 {string} string "Username already exists"
// @Failure 500 {string} string "Internal server error"
// @Router /signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "base", h.page(r, "signup", msgMissingFields))
		return
	}

	req := &models.SignupRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	_, err := h.authService.Signup(r.Context(), req)
	switch {
	case err == nil:
		h.metrics.ObserveSignup(metrics.ResultSuccess)
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, models.ErrPasswordTooLong):
		h.metrics.ObserveSignup(metrics.ResultInvalid)
		h.render(w, http.StatusBadRequest, "base", h.page(r, "signup", msgPasswordTooLong))
	case errors.Is(err, models.ErrValidation):
		h.metrics.ObserveSignup(metrics.ResultInvalid)
		h.render(w, http.StatusBadRequest, "base", h.page(r, "signup", msgMissingFields))
	case errors.Is(err, models.ErrDuplicateUsername):
		h.metrics.ObserveSignup(metrics.ResultDuplicate)
		h.render(w, http.StatusConflict, "base", h.page(r, "signup", msgUsernameTaken))
	default:
		h.metrics.ObserveSignup(metrics.ResultError)
		h.logger.Error("failed to sign up user", zap.Error(err))
		h.render(w, http.StatusInternalServerError, "base", h.page(r, "signup", msgSomethingWentWrong))
	}
}

// LoginPage handles GET /login
// @Summary Login form
// @Description Shows the login form together with any pending login error messages. Messages are shown once.
// @Tags auth
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /login [get]
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	messages, err := h.sessions.Flashes(w, r, session.FlashError)
	if err != nil {
		h.logger.Error("failed to read flash messages", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.render(w, http.StatusOK, "base", h.page(r, "login", messages...))
}

// Login handles POST /login
// @Summary Log in
// @Description Verify the username and password. On success the session is established and the browser goes to the page it originally asked for, or the home page.
// @Description On failure a message is queued and the browser goes back to the login form.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 302 {string} string "Redirect to the stored page or /, or back to /login on failure"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.loginFailed(w, r, metrics.ResultInvalid, msgMissingCredentials)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if strings.TrimSpace(username) == "" || password == "" {
		h.loginFailed(w, r, metrics.ResultInvalid, msgMissingCredentials)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownUser):
			h.loginFailed(w, r, metrics.ResultUnknownUser, h.failureMessage(msgUnknownUser))
		case errors.Is(err, models.ErrBadPassword):
			h.loginFailed(w, r, metrics.ResultBadPassword, h.failureMessage(msgBadPassword))
		default:
			h.metrics.ObserveLogin(metrics.ResultError)
			h.logger.Error("failed to authenticate user", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	returnTo, err := h.sessions.LogIn(w, r, h.identity.Serialize(user))
	if err != nil {
		h.metrics.ObserveLogin(metrics.ResultError)
		h.logger.Error("failed to establish session", zap.Int("userId", user.ID), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.ObserveLogin(metrics.ResultSuccess)
	h.logger.Info("user logged in", zap.Int("userId", user.ID))

	if returnTo == "" {
		returnTo = "/"
	}
	http.Redirect(w, r, returnTo, http.StatusFound)
}

// Logout handles GET /logout
// @Summary Log out
// @Description Remove the login state from the session. Logging out without being logged in is not an error.
// @Tags auth
// @Success 302 {string} string "Redirect to /login"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Error("failed to clear session", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user, ok := middleware.GetUser(r.Context()); ok {
		h.logger.Info("user logged out", zap.Int("userId", user.ID))
	}
	h.metrics.ObserveLogout()
	http.Redirect(w, r, "/login", http.StatusFound)
}

// RememberPage handles GET /remember
// @Summary Remember password form
// @Tags auth
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /remember [get]
func (h *AuthHandler) RememberPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "remember", h.page(r, "remember"))
}

// RememberPassword handles POST /remember-password
// @Summary Request a password reminder
// @Description Accepts the request and does nothing else yet.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string false "Email"
// @Success 202 {object} map[string]string "Request accepted"
// @Router /remember-password [post]
func (h *AuthHandler) RememberPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Debug("failed to parse password reminder form", zap.Error(err))
	}
	h.logger.Debug("password reminder requested", zap.Bool("emailProvided", r.PostFormValue("email") != ""))
	h.respondJSON(w, http.StatusAccepted, map[string]string{"message": "request accepted"})
}

// loginFailed queues message for the login form and sends the browser back to it
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, result, message string) {
	h.metrics.ObserveLogin(result)
	if err := h.sessions.AddFlash(w, r, session.FlashError, message); err != nil {
		h.logger.Error("failed to store flash message", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) failureMessage(specific string) string {
	if h.unifiedFailure {
		return msgBadCredentials
	}
	return specific
}

func (h *AuthHandler) page(r *http.Request, section string, messages ...string) PageData {
	user, _ := middleware.GetUser(r.Context())
	return PageData{Section: section, User: user, Messages: messages}
}
