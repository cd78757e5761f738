package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	apperrors "github.com/musicclouds/web/internal/errors"
	"github.com/musicclouds/web/internal/http/validation"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/service"
)

// MaxPasswordLen is the longest password the sign-in and account forms accept.
const MaxPasswordLen = 20

// SignIn handles the sign-in form.
// POST /sign-in with login and password form fields.
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Sign in")
	if err := r.ParseForm(); err != nil {
		data.Message = "Invalid form submission."
		h.render(w, r, http.StatusBadRequest, "sign-in", data)
		return
	}

	in := ports.LoginInput{
		Email:    strings.TrimSpace(r.PostFormValue("login")),
		Password: r.PostFormValue("password"),
	}
	fv := validation.New().
		Validate("login", in.Email, validation.Required("Email"), validation.Email("Email")).
		Validate("password", in.Password, validation.Required("Password"), validation.MaxLen("Password", MaxPasswordLen))
	data.Form = map[string]string{"login": in.Email}
	if !fv.OK() {
		data.Errors = fv.Errors()
		h.render(w, r, http.StatusUnprocessableEntity, "sign-in", data)
		return
	}

	sess := SessionFromContext(r.Context())
	if _, err := sess.Login(r.Context(), in); err != nil {
		mapped := sessionError(err)
		data.Message = userMessage(mapped)
		h.render(w, r, apperrors.HTTPStatus(mapped), "sign-in", data)
		return
	}
	Redirect(w, r, afterSignInPath)
}

// SignUp handles the registration form and signs the new account in.
// POST /sign-up.
func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, "Sign up")
	if err := r.ParseForm(); err != nil {
		data.Message = "Invalid form submission."
		h.render(w, r, http.StatusBadRequest, "sign-up", data)
		return
	}

	acct, fv := accountFromForm(r, true)
	data.Form = accountForm(acct)
	if !fv.OK() {
		data.Errors = fv.Errors()
		h.render(w, r, http.StatusUnprocessableEntity, "sign-up", data)
		return
	}

	in := ports.RegisterInput{
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Email:     acct.Email,
		Username:  acct.Username,
		Password:  acct.Password,
		Age:       acct.Age,
		Gender:    acct.Gender,
	}
	sess := SessionFromContext(r.Context())
	if _, err := sess.Register(r.Context(), in); err != nil {
		mapped := sessionError(err)
		data.Message = userMessage(mapped)
		h.render(w, r, apperrors.HTTPStatus(mapped), "sign-up", data)
		return
	}
	Redirect(w, r, afterSignInPath)
}

// Logout ends the session and returns to the sign-in page.
// POST /logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		sess.Logout(r.Context())
	}
	Redirect(w, r, signInPath)
}

// Navigate resolves a sidebar entry by name or slug and sends the browser to
// its target. Selecting Logout ends the session first.
// GET|POST /nav/{name}.
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := SessionFromContext(ctx)
	if sess != nil {
		sess.IsActive(ctx)
	}

	target, err := h.Nav.Select(ctx, r.PathValue("name"), sess)
	if err != nil {
		var unknown *service.UnknownLinkError
		if errors.As(err, &unknown) {
			h.NotFound(w, r)
			return
		}
		h.logger().ErrorContext(ctx, "navigation failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	Redirect(w, r, target)
}

type authStatus struct {
	Authenticated bool              `json:"authenticated"`
	Username      string            `json:"username,omitempty"`
	Roles         []domainauth.Role `json:"roles,omitempty"`
	Admin         bool              `json:"admin"`
}

// Status reports whether the visitor has a live session.
// GET /auth/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := authStatus{}
	if sess := SessionFromContext(ctx); sess != nil && sess.IsActive(ctx) {
		if u := sess.User(); u != nil {
			resp.Authenticated = true
			resp.Username = u.Username
			resp.Roles = u.Roles
			resp.Admin = u.IsAdmin()
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

var accountFields = []string{"firstName", "lastName", "username", "email", "age", "gender", "role"}

// accountFromForm reads and validates the shared account fields. The password
// is required only when requirePassword is set.
func accountFromForm(r *http.Request, requirePassword bool) (ports.Account, *validation.FieldValidator) {
	form := formValues(r, accountFields...)
	password := r.PostFormValue("password")

	passwordRules := []validation.Validator{validation.MaxLen("Password", MaxPasswordLen)}
	if requirePassword {
		passwordRules = append([]validation.Validator{validation.Required("Password")}, passwordRules...)
	}

	fv := validation.New().
		Validate("firstName", form["firstName"], validation.Required("First name"), validation.MaxLen("First name", 50)).
		Validate("lastName", form["lastName"], validation.Required("Last name"), validation.MaxLen("Last name", 50)).
		Validate("username", form["username"], validation.Required("Username"), validation.MaxLen("Username", 50)).
		Validate("email", form["email"], validation.Required("Email"), validation.Email("Email")).
		Validate("age", form["age"], validation.IntRange("Age", 1, 150)).
		Validate("gender", form["gender"], validation.OneOf("Gender", Genders)).
		Validate("password", password, passwordRules...)

	age, _ := strconv.Atoi(strings.TrimSpace(form["age"]))
	return ports.Account{
		FirstName: strings.TrimSpace(form["firstName"]),
		LastName:  strings.TrimSpace(form["lastName"]),
		Username:  strings.TrimSpace(form["username"]),
		Email:     strings.TrimSpace(form["email"]),
		Age:       age,
		Gender:    strings.TrimSpace(form["gender"]),
		Role:      strings.TrimSpace(form["role"]),
		Password:  password,
	}, fv
}

// accountForm renders an account back into form values, without the password.
func accountForm(a ports.Account) map[string]string {
	form := map[string]string{
		"firstName": a.FirstName,
		"lastName":  a.LastName,
		"username":  a.Username,
		"email":     a.Email,
		"gender":    a.Gender,
		"role":      a.Role,
	}
	if a.Age > 0 {
		form["age"] = strconv.Itoa(a.Age)
	}
	return form
}
