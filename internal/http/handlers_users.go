package httpx

import (
	"net/http"
	"strconv"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	apperrors "github.com/musicclouds/web/internal/errors"
	"github.com/musicclouds/web/internal/observability/metrics"
)

// requireAdmin runs the users-management policy for a form post. On success
// it returns the caller's credential; otherwise the response is already written.
func (h *Handlers) requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := activeCredential(r)
	d := h.Guard.Decide(raw, UsersManagementPath, usersManagementPolicy)
	metrics.EmitRouteDecision(h.Metrics, UsersManagementPath, d)

	switch d.Outcome {
	case domainauth.OutcomeRender:
		if h.Users == nil {
			h.renderUsers(w, r, raw, usersState{})
			return "", false
		}
		return raw, true
	case domainauth.OutcomeSignIn:
		Redirect(w, r, signInPath)
	default:
		h.NotFound(w, r)
	}
	return "", false
}

// usersState is the form state carried back into the admin page after a failed post.
type usersState struct {
	form    map[string]string
	errors  map[string]string
	message string
	editID  int
	status  int
}

// renderUsers re-renders the admin page carrying form state from a failed post.
func (h *Handlers) renderUsers(w http.ResponseWriter, r *http.Request, raw string, state usersState) {
	data := h.pageData(r, "Users management")
	data.Path = UsersManagementPath
	data.Form = state.form
	data.Errors = state.errors
	data.Message = state.message
	data.EditID = state.editID

	status := h.loadUsers(r, raw, &data)
	if status == http.StatusOK && state.status != 0 {
		status = state.status
	}
	h.render(w, r, status, "users-management", data)
}

// CreateUser adds an account.
// POST /users-management/users.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderUsers(w, r, raw, usersState{message: "Invalid form submission.", status: http.StatusBadRequest})
		return
	}

	acct, fv := accountFromForm(r, true)
	if !fv.OK() {
		h.renderUsers(w, r, raw, usersState{form: accountForm(acct), errors: fv.Errors(), status: http.StatusUnprocessableEntity})
		return
	}

	if err := h.Users.CreateUser(r.Context(), raw, acct); err != nil {
		h.usersFailure(w, r, raw, err, usersState{form: accountForm(acct)})
		return
	}
	h.logger().InfoContext(r.Context(), "user created", "username", acct.Username)
	Redirect(w, r, UsersManagementPath)
}

// UpdateUser replaces an account's editable fields. A blank password keeps the current one.
// POST /users-management/users/{id}.
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return
	}
	if err = r.ParseForm(); err != nil {
		h.renderUsers(w, r, raw, usersState{editID: id, message: "Invalid form submission.", status: http.StatusBadRequest})
		return
	}

	acct, fv := accountFromForm(r, false)
	if !fv.OK() {
		h.renderUsers(w, r, raw, usersState{
			editID: id,
			form:   accountForm(acct),
			errors: fv.Errors(),
			status: http.StatusUnprocessableEntity,
		})
		return
	}

	if err = h.Users.UpdateUser(r.Context(), raw, id, acct); err != nil {
		h.usersFailure(w, r, raw, err, usersState{editID: id, form: accountForm(acct)})
		return
	}
	h.logger().InfoContext(r.Context(), "user updated", "user_id", id)
	Redirect(w, r, UsersManagementPath)
}

// DeleteUser removes an account.
// POST /users-management/users/{id}/delete.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return
	}

	if err = h.Users.DeleteUser(r.Context(), raw, id); err != nil {
		h.usersFailure(w, r, raw, err, usersState{})
		return
	}
	h.logger().InfoContext(r.Context(), "user deleted", "user_id", id)
	Redirect(w, r, UsersManagementPath)
}

func (h *Handlers) usersFailure(w http.ResponseWriter, r *http.Request, raw string, err error, state usersState) {
	mapped := backendError(err)
	h.logger().WarnContext(r.Context(), "user management request failed", "error", err, "code", apperrors.Code(mapped))
	state.message = userMessage(mapped)
	state.status = apperrors.HTTPStatus(mapped)
	h.renderUsers(w, r, raw, state)
}
