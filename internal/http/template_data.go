package httpx

import (
	"net/http"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	"github.com/musicclouds/web/internal/ports"
)

// PageData is the view model handed to every page template.
type PageData struct {
	Title string
	// Path is the request path, used to mark the current nav entry.
	Path string
	User *domainauth.User
	Nav  []domainauth.NavLink

	// Form echoes submitted values back into the form. Passwords are never echoed.
	Form map[string]string
	// Errors holds field-level validation messages keyed by form field.
	Errors map[string]string
	// Message is a page-level alert.
	Message string

	Users  []ports.Account
	EditID int
}

// formValues copies the named fields out of a parsed form.
func formValues(r *http.Request, fields ...string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v := r.PostFormValue(f); v != "" {
			out[f] = v
		}
	}
	return out
}
