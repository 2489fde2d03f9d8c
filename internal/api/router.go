package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/commerce-api/internal/api/handler"
	"github.com/99minutos/commerce-api/internal/api/middleware"
	"github.com/99minutos/commerce-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs. Denylist may be
// nil when revocation is disabled.
type Dependencies struct {
	Logger       zerolog.Logger
	Auth         ports.AuthService
	Addresses    ports.AddressService
	Verifier     ports.TokenVerifier
	Denylist     ports.TokenDenylist
	HealthChecks []handler.HealthCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// Each router gets its own registry so tests can build many routers.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "commerce",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	addressHandler := handler.NewAddressHandler(deps.Addresses)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks...)
	requireAuth := middleware.Auth(deps.Verifier, deps.Denylist, deps.Logger)
	requireAdmin := middleware.RequireAdmin(deps.Auth)

	// --- Auth routes ---
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)
	e.GET("/public", authHandler.Public)
	e.DELETE("/logout", authHandler.Logout, requireAuth)
	e.GET("/auth", authHandler.AuthProbe, requireAuth)
	e.GET("/me", authHandler.Me, requireAuth)

	// --- Address routes (ownership enforced in the service) ---
	e.POST("/address", addressHandler.Create, requireAuth)
	e.GET("/addresses", addressHandler.List, requireAuth)
	e.GET("/address/:id", addressHandler.Get, requireAuth)
	e.PUT("/address/:id", addressHandler.Update, requireAuth)
	e.DELETE("/address/:id", addressHandler.Delete, requireAuth)

	// --- Admin ---
	e.GET("/admin/users/:username", authHandler.AdminGetUser, requireAuth, requireAdmin)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))

	return e
}

// requestLogger writes one access log line per request. Only the path is
// logged so a ?token= query parameter never reaches the logs.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURIPath:   true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Status >= 400:
				evt = log.Warn()
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
