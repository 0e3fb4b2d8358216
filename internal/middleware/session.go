package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/syndikat/teamliste/internal/repository"
	"github.com/syndikat/teamliste/internal/utils"
)

// Context keys populated by SessionAuth for downstream handlers.
const (
	CtxUser   = "user"    // model.User, freshly loaded for this request
	CtxUserID = "user_id" // uint64
	CtxRole   = "role"    // string
)

// SessionAuth returns an Echo middleware that authenticates requests via the
// session cookie. It verifies the token, re-reads the user record and checks
// that the token was issued after the user's last invalidation marker. The
// fresh user is stashed in the context so handlers never trust stale claims.
// All failure modes produce the same 401 body; clients never learn whether
// the cookie was missing, malformed, expired or superseded.
func SessionAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(utils.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}

			claims, err := utils.VerifySessionToken(secret, cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				// Deleted users and DB errors both end the session here.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			if !utils.SessionStillValid(claims, u.PasswordChangedAt) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}

			c.Set(CtxUser, u)
			c.Set(CtxUserID, u.ID)
			c.Set(CtxRole, u.Role)
			return next(c)
		}
	}
}
