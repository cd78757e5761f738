package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/musicclouds/web/config"
	"github.com/musicclouds/web/internal/adapters/backend"
	httpx "github.com/musicclouds/web/internal/http"
	"github.com/musicclouds/web/internal/observability/statsd"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/service"
	"golang.org/x/sync/errgroup"
)

// HandlerDeps are the collaborators BuildHandler wires together.
type HandlerDeps struct {
	Stores ports.CredentialStoreFactory
	// Auth and Users default to one backend client built from cfg.Backend.
	Auth    ports.AuthAPI
	Users   ports.UsersAPI
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// BuildHandler assembles the web client: sessions, route guard, navigation and
// pages, wrapped as Recover -> Logging -> router.
func BuildHandler(cfg *config.AppConfig, deps HandlerDeps) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Stores == nil {
		return nil, errors.New("credential store is required")
	}

	auth, users := deps.Auth, deps.Users
	if auth == nil || users == nil {
		client, err := backend.NewClient(backend.Options{
			BaseURL:   cfg.Backend.BaseURL,
			TokenPath: cfg.Backend.TokenPath,
			Timeout:   cfg.Backend.Timeout,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("backend client: %w", err)
		}
		if auth == nil {
			auth = client
		}
		if users == nil {
			users = client
		}
	}

	sessions := service.NewSessionFactory(deps.Stores, service.SessionOptions{
		Auth:    auth,
		Logger:  logger,
		Metrics: deps.Metrics,
		Policy: service.SessionPolicy{
			PurgeMalformed:   cfg.Credentials.PurgeMalformed,
			AllowNonExpiring: cfg.Credentials.AllowNonExpiring,
		},
	})

	router, err := httpx.NewRouter(httpx.RouterServices{
		Sessions: sessions,
		Guard:    service.NewRouteGuard(),
		Nav:      service.NewNavigationPresenter(service.DefaultNavLinks()),
		Users:    users,
		Visitor: httpx.VisitorCookie{
			Name:   cfg.Credentials.CookieName,
			Domain: cfg.HTTP.CookieDomain,
			Secure: cfg.Credentials.CookieSecure,
			MaxAge: int(cfg.Credentials.TTL / time.Second),
		},
		Metrics: deps.Metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	h := httpx.Logging(logger)(router)
	h = httpx.Recover(logger)(h)
	return h, nil
}

// Run connects the credential store, serves the web client on cfg.HTTP.Addr
// and shuts down gracefully on SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, infra, err := NewCredentialStores(ctx, cfg, StoreDeps{Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close infrastructure failed", "error", cerr)
		}
	}()

	metricsClient, err := NewMetricsClient(cfg.Observability.Metrics, cfg.IsDev, logger)
	if err != nil {
		return fmt.Errorf("metrics client: %w", err)
	}
	defer func() {
		if cerr := metricsClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close metrics client failed", "error", cerr)
		}
	}()

	handler, err := BuildHandler(cfg, HandlerDeps{Stores: stores, Metrics: metricsClient, Logger: logger})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}
	return Serve(ctx, ln, handler, cfg.HTTP, logger)
}

// Serve runs handler on ln until ctx is cancelled, then drains in-flight
// requests for at most ShutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, cfg config.HTTPConfig, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
