package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/brandpreneur/client-portal/docs"
	"github.com/brandpreneur/client-portal/internal/api/handler"
	"github.com/brandpreneur/client-portal/internal/api/middleware"
	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/portal"
)

const uploadBodyLimit = "12M"

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Sessions *portal.Registry
	// Flow is the federated sign-in flow; nil answers 501.
	Flow     handler.FederatedStarter
	Contacts handler.ContactHistory
	Health   map[string]handler.HealthCheck

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	SecureCookie   bool
	// Registerer receives the HTTP request metrics; nil uses the default registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	if len(deps.AllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     deps.AllowedOrigins,
			AllowHeaders:     []string{echo.HeaderContentType, middleware.SessionHeader, handler.IdempotencyHeader},
			ExposeHeaders:    []string{middleware.SessionHeader},
			AllowCredentials: true,
		}))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.SecureCookie)
	authHandler := handler.NewAuthHandler(flowOrDisabled(deps.Flow), deps.Sessions, deps.Log)
	contactHandler := handler.NewContactHandler(deps.Contacts)
	adminHandler := handler.NewAdminHandler()
	editorHandler := handler.NewEditorHandler()
	healthHandler := handler.NewHealthHandler(deps.Health)

	// --- Operational endpoints (no session required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session bootstrap and provider redirect ---
	e.POST("/v1/sessions", sessionHandler.Open)
	e.GET("/auth/callback", authHandler.Callback)

	v1 := e.Group("/v1", middleware.Session(deps.Sessions))

	v1.GET("/session", sessionHandler.Get)
	v1.DELETE("/session", sessionHandler.Dispose)
	v1.POST("/session/theme", sessionHandler.ToggleTheme)
	v1.POST("/session/navigate", sessionHandler.Navigate)

	auth := v1.Group("/auth")
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signout", authHandler.SignOut)
	auth.GET("/federated", authHandler.Federated)

	contact := v1.Group("/contact", middleware.RequireRole(access.RoleClient))
	contact.POST("", contactHandler.Submit, echomiddleware.BodyLimit(uploadBodyLimit))
	contact.GET("", contactHandler.History)

	admin := v1.Group("/admin", middleware.RequireRole(access.RoleAdmin))
	admin.GET("/clients", adminHandler.ListClients)
	admin.DELETE("/clients/:id", adminHandler.DeleteClient)

	admin.POST("/editor", editorHandler.Open)
	admin.GET("/editor", editorHandler.Get)
	admin.DELETE("/editor", editorHandler.Close)
	admin.PUT("/editor/tab", editorHandler.SelectTab)
	admin.PATCH("/editor/fields", editorHandler.SetField)
	admin.POST("/editor/items", editorHandler.AppendItem)
	admin.DELETE("/editor/items", editorHandler.RemoveItem)
	admin.POST("/editor/uploads", editorHandler.Upload, echomiddleware.BodyLimit(uploadBodyLimit))
	admin.POST("/editor/commit", editorHandler.Commit)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("session_id", middleware.SessionID(c)).
				Msg("request")
			return nil
		},
	})
}

type disabledFlow struct{}

func (disabledFlow) Begin(context.Context, string) (string, error) {
	return "", domain.ErrFederationDisabled
}

func (disabledFlow) Resolve(context.Context, string) (string, error) {
	return "", domain.ErrFederationDisabled
}

func flowOrDisabled(f handler.FederatedStarter) handler.FederatedStarter {
	if f == nil {
		return disabledFlow{}
	}
	return f
}
