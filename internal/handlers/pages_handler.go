package handlers

import (
	"html/template"
	"net/http"

	"github.com/LucianoSainz/w5d1/internal/auth/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PagesHandler serves the pages behind the login.
// Access to them is decided by the policy middleware before they run.
type PagesHandler struct {
	BaseHandler
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(templates *template.Template, logger *zap.Logger) *PagesHandler {
	return &PagesHandler{
		BaseHandler: BaseHandler{logger: logger, templates: templates},
	}
}

// RegisterRoutes registers all page routes
func (h *PagesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/private-page", h.PrivatePage)
	r.Get("/private-page-admin-editors", h.AdminEditorsPage)
	r.Get("/private-page-admin", h.AdminPage)
}

// Home handles GET /
// @Summary Home page
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 302 {string} string "Redirect to /login when not logged in"
// @Router / [get]
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.userPage(w, r, "base", "index")
}

// PrivatePage handles GET /private-page
// @Summary Page for any logged in user
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 302 {string} string "Redirect to /login when not logged in"
// @Router /private-page [get]
func (h *PagesHandler) PrivatePage(w http.ResponseWriter, r *http.Request) {
	h.userPage(w, r, "base", "private")
}

// AdminEditorsPage handles GET /private-page-admin-editors
// @Summary Page for admins and editors
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 302 {string} string "Redirect to /login when not logged in, to / when the role is missing"
// @Router /private-page-admin-editors [get]
func (h *PagesHandler) AdminEditorsPage(w http.ResponseWriter, r *http.Request) {
	h.userPage(w, r, "onlyforadminseditors", "private")
}

// AdminPage handles GET /private-page-admin
// @Summary Page for admins
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 302 {string} string "Redirect to /login when not logged in, to / when the role is missing"
// @Router /private-page-admin [get]
func (h *PagesHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	h.userPage(w, r, "onlyforadmins", "private")
}

// userPage renders a page that needs the logged in user.
// Reaching it anonymously means the route is missing from the policy table.
func (h *PagesHandler) userPage(w http.ResponseWriter, r *http.Request, name, section string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		h.logger.Warn("protected page reached without a user", zap.String("path", r.URL.Path))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, name, PageData{Section: section, User: user})
}
