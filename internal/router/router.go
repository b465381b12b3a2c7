package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/recipe-api/internal/handler"
	"github.com/iliyamo/recipe-api/internal/middleware"
)

// Options carries what New needs to assemble the server.
type Options struct {
	JWTSecret string
	Log       *slog.Logger
	DB        handler.Pinger
	// Limiter runs after the caller is identified; nil disables it.
	Limiter echo.MiddlewareFunc
	Auth    *handler.AuthHandler
	Recipes *handler.RecipeHandler
}

// New builds the echo instance with the global middleware chain and every
// route.  Identify runs before the logger and limiter so both see the
// caller; JWTAuth on the route groups still rejects bad tokens.
func New(o Options) *echo.Echo {
	if o.Log == nil {
		o.Log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.Identify(o.JWTSecret))
	e.Use(middleware.RequestLog(o.Log))
	e.Use(middleware.Metrics())
	if o.Limiter != nil {
		e.Use(o.Limiter)
	}

	RegisterRoutes(e, o.DB)
	if o.Auth != nil {
		RegisterAuth(e, o.Auth, o.JWTSecret)
	}
	if o.Recipes != nil {
		RegisterRecipes(e, o.Recipes, o.JWTSecret)
	}
	return e
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers token and account routes.  Token operations live
// under /v1/auth; /v1/me requires an authenticated caller.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// JWTAuth is lenient, so logout can still see a bearer token.
	g := e.Group("/v1/auth", middleware.JWTAuth(jwtSecret))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// route level so unknown /v1 paths stay 404 rather than 401
	guard := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireAuth()}
	e.GET("/v1/me", a.Me, guard...)
	e.PUT("/v1/me/password", a.ChangePassword, guard...)
}

// RegisterRecipes registers the recipe, tag and ingredient collections.
// Anonymous callers reach the handlers and are rejected by the access layer.
func RegisterRecipes(e *echo.Echo, h *handler.RecipeHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	withSlash(g.GET, "/recipes/", h.ListRecipes)
	withSlash(g.POST, "/recipes/", h.CreateRecipe)
	withSlash(g.GET, "/recipes/:id/", h.GetRecipe)

	withSlash(g.GET, "/tags/", h.ListTags)
	withSlash(g.POST, "/tags/", h.CreateTag)
	withSlash(g.GET, "/ingredients/", h.ListIngredients)
	withSlash(g.POST, "/ingredients/", h.CreateIngredient)
}

type addFunc func(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route

// withSlash registers path both with and without its trailing slash.
func withSlash(add addFunc, path string, h echo.HandlerFunc) {
	add(path, h)
	if bare := strings.TrimSuffix(path, "/"); bare != path && bare != "" {
		add(bare, h)
	}
}
