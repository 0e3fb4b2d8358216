package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/syndikat/teamliste/internal/handler"
	"github.com/syndikat/teamliste/internal/middleware"
	"github.com/syndikat/teamliste/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Login and the two
// break-glass operations go through the rate limiter since they accept
// guessable secrets; logout does not need a session at all. Protected
// endpoints live under /v1 behind the session middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, session, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, limiter)
	g.POST("/logout", a.Logout)
	// Master-password gated on purpose instead of admin-gated: the point of
	// the break-glass flow is that it still works when no admin can log in.
	g.POST("/reset-password", a.ResetPassword, limiter)
	g.POST("/invalidate-sessions", a.InvalidateAllSessions, limiter)

	auth := e.Group("/v1")
	auth.Use(session)
	auth.GET("/me", a.Me)
}

// RegisterTeam registers the roster endpoints. Reads require a session;
// mutations additionally require the admin role. The shared list endpoints
// go through the response cache.
func RegisterTeam(e *echo.Echo, t *handler.TeamHandler, session, cache echo.MiddlewareFunc) {
	admin := middleware.RequireRole(model.RoleAdmin)

	g := e.Group("/v1/team")
	g.Use(session)

	g.GET("", t.List, cache)
	g.GET("/ranks", t.ListedRanks, cache)
	g.GET("/verwaltungen", t.ListedVerwaltungen, cache)
	g.GET("/:id", t.Get)

	g.POST("", t.Create, admin)
	g.PATCH("/:id", t.Update, admin)
	g.DELETE("/:id", t.Delete, admin)
	g.PATCH("/:id/activity-status", t.UpdateActivityStatus, admin)
	g.PATCH("/:id/notes", t.UpdateNotes, admin)
	g.PATCH("/:id/verwaltungen", t.UpdateVerwaltungen, admin)
}

// RegisterTaxonomies registers the rank and Verwaltung management
// endpoints. Listing is public so the login screen can render the
// hierarchy; everything else is admin only.
func RegisterTaxonomies(e *echo.Echo, ranks, verwaltungen *handler.TaxonomyHandler, session, cache echo.MiddlewareFunc) {
	admin := middleware.RequireRole(model.RoleAdmin)

	for prefix, h := range map[string]*handler.TaxonomyHandler{
		"/v1/ranks":        ranks,
		"/v1/verwaltungen": verwaltungen,
	} {
		e.GET(prefix, h.List, cache)
		e.POST(prefix, h.Create, session, admin)
		e.PATCH(prefix+"/:id", h.Update, session, admin)
		e.DELETE(prefix+"/:id", h.Delete, session, admin)
	}
}
