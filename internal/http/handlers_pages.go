package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	apperrors "github.com/musicclouds/web/internal/errors"
	"github.com/musicclouds/web/internal/observability/metrics"
	"github.com/musicclouds/web/internal/observability/statsd"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/service"
)

// Handlers serves the pages and form posts of the web client.
type Handlers struct {
	Guard    service.RouteGuard
	Nav      *service.NavigationPresenter
	Users    ports.UsersAPI
	Renderer *TemplateRenderer
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

func (h *Handlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// activeCredential runs the expiry check and returns the credential the guard
// should see: empty when there is no live session.
func activeCredential(r *http.Request) string {
	ctx := r.Context()
	sess := SessionFromContext(ctx)
	if sess == nil || !sess.IsActive(ctx) {
		return ""
	}
	raw, _ := sess.Credential(ctx)
	return raw
}

// Page serves a route from the page table.
func (h *Handlers) Page(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := activeCredential(r)
		if !route.Guarded {
			h.renderRoute(w, r, route, raw)
			return
		}

		d := h.Guard.Decide(raw, r.URL.Path, route.Policy)
		metrics.EmitRouteDecision(h.Metrics, route.Path, d)

		switch d.Outcome {
		case domainauth.OutcomeSignIn:
			h.render(w, r, http.StatusOK, "sign-in", h.pageData(r, "Sign in"))
		case domainauth.OutcomeRedirect:
			http.Redirect(w, r, d.Location, http.StatusFound)
		case domainauth.OutcomeRender:
			h.renderRoute(w, r, route, raw)
		default:
			h.NotFound(w, r)
		}
	}
}

// NotFound renders the not-found page with status 404.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not-found", h.pageData(r, "Not found"))
}

func (h *Handlers) renderRoute(w http.ResponseWriter, r *http.Request, route Route, raw string) {
	data := h.pageData(r, route.Title)
	status := http.StatusOK
	if route.Page == "users-management" {
		status = h.loadUsers(r, raw, &data)
	}
	h.render(w, r, status, route.Page, data)
}

// pageData builds the common view model from the request's session. An
// expired credential is cleared first so the navigation shows a guest.
func (h *Handlers) pageData(r *http.Request, title string) PageData {
	var user *domainauth.User
	if sess := SessionFromContext(r.Context()); sess != nil && sess.IsActive(r.Context()) {
		user = sess.User()
	}
	return PageData{
		Title: title,
		Path:  r.URL.Path,
		User:  user,
		Nav:   h.Nav.Links(user),
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	if err := h.Renderer.Render(w, status, page, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// loadUsers fills the admin table and, when ?edit=<id> names a listed user,
// prefills the edit form. It returns the status to render with.
func (h *Handlers) loadUsers(r *http.Request, raw string, data *PageData) int {
	if h.Users == nil {
		data.Message = "User management is not configured."
		return http.StatusServiceUnavailable
	}
	ctx := r.Context()
	accounts, err := h.Users.ListUsers(ctx, raw)
	if err != nil {
		mapped := backendError(err)
		h.logger().WarnContext(ctx, "list users failed", "error", err)
		if data.Message == "" {
			data.Message = userMessage(mapped)
		}
		return apperrors.HTTPStatus(mapped)
	}
	data.Users = accounts

	if editID, convErr := strconv.Atoi(r.URL.Query().Get("edit")); convErr == nil && data.Form == nil {
		for _, acct := range accounts {
			if acct.ID == editID {
				data.EditID = editID
				data.Form = accountForm(acct)
				break
			}
		}
	}
	return http.StatusOK
}
