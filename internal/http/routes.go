package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	"github.com/musicclouds/web/internal/observability/statsd"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/service"
)

const (
	// UsersManagementPath is the admin screen.
	UsersManagementPath = "/users-management"
	signInPath          = "/sign-in"
	afterSignInPath     = "/discover"
)

// Route is one page of the web client.
type Route struct {
	Path  string
	Title string
	// Page names the template under templates/pages.
	Page string
	// Guarded routes run the route guard with Policy; the rest render for everyone.
	Guarded bool
	Policy  domainauth.RoutePolicy
}

// usersManagementPolicy gates both the admin page and its form posts.
var usersManagementPolicy = domainauth.RoutePolicy{
	ProtectedPaths:  []string{UsersManagementPath},
	AuthorizedRoles: []string{"ADMIN"},
}

// DefaultRoutes is the page table of the web client. Paths not listed here
// render the not-found page.
func DefaultRoutes() []Route {
	return []Route{
		{
			Path: "/", Title: "Sign in", Page: "sign-in", Guarded: true,
			Policy: domainauth.RoutePolicy{ProtectedPaths: []string{"/"}, NonAuthenticatedPath: signInPath},
		},
		{
			Path: signInPath, Title: "Sign in", Page: "sign-in", Guarded: true,
			Policy: domainauth.RoutePolicy{ProtectedPaths: []string{signInPath}, NonAuthenticatedPath: afterSignInPath},
		},
		{Path: UsersManagementPath, Title: "Users management", Page: "users-management", Guarded: true, Policy: usersManagementPolicy},
		{Path: "/discover", Title: "Discover", Page: "section"},
		{Path: "/top-artists", Title: "Top Artists", Page: "section"},
		{Path: "/top-charts", Title: "Top Charts", Page: "section"},
		{Path: "/around-you", Title: "Around You", Page: "section"},
		{Path: "/my-tracks", Title: "My Tracks", Page: "section"},
		{Path: "/sign-up", Title: "Sign up", Page: "sign-up"},
	}
}

// RouterServices holds everything the router needs.
type RouterServices struct {
	Sessions *service.SessionFactory
	Guard    service.RouteGuard
	// Nav defaults to the standard sidebar.
	Nav *service.NavigationPresenter
	// Users backs the admin screen. When nil the screen reports it is not configured.
	Users ports.UsersAPI
	// Routes defaults to DefaultRoutes.
	Routes   []Route
	Visitor  VisitorCookie
	Renderer *TemplateRenderer
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// NewRouter creates the HTTP router. Every route except /healthz runs behind
// the Visitor and Sessions middlewares.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Sessions == nil {
		return nil, errors.New("session factory is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := services.Renderer
	if renderer == nil {
		var err error
		renderer, err = NewTemplateRenderer(TemplateRendererConfig{Logger: logger})
		if err != nil {
			return nil, err
		}
	}
	nav := services.Nav
	if nav == nil {
		nav = service.NewNavigationPresenter(nil)
	}
	routes := services.Routes
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}

	h := &Handlers{
		Guard:    services.Guard,
		Nav:      nav,
		Users:    services.Users,
		Renderer: renderer,
		Metrics:  services.Metrics,
		Logger:   logger,
	}

	visitor := Visitor(services.Visitor)
	sessions := Sessions(services.Sessions)
	wrap := func(fn http.HandlerFunc) http.Handler { return visitor(sessions(fn)) }

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	for _, route := range routes {
		if !renderer.Has(route.Page) {
			return nil, errors.New("route " + route.Path + " references unknown page " + route.Page)
		}
		pattern := "GET " + route.Path
		if route.Path == "/" {
			pattern = "GET /{$}"
		}
		mux.Handle(pattern, wrap(h.Page(route)))
	}

	registerAuthRoutes(mux, h, wrap)
	registerUsersRoutes(mux, h, wrap)

	mux.Handle("/", wrap(h.NotFound))
	return mux, nil
}

func registerAuthRoutes(mux *http.ServeMux, h *Handlers, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("POST /sign-in", wrap(h.SignIn))
	mux.Handle("POST /sign-up", wrap(h.SignUp))
	mux.Handle("POST /logout", wrap(h.Logout))
	mux.Handle("GET /auth/status", wrap(h.Status))
	mux.Handle("GET /nav/{name}", wrap(h.Navigate))
	mux.Handle("POST /nav/{name}", wrap(h.Navigate))
}

func registerUsersRoutes(mux *http.ServeMux, h *Handlers, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("POST "+UsersManagementPath+"/users", wrap(h.CreateUser))
	mux.Handle("POST "+UsersManagementPath+"/users/{id}", wrap(h.UpdateUser))
	mux.Handle("POST "+UsersManagementPath+"/users/{id}/delete", wrap(h.DeleteUser))
}
