package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/syndikat/teamliste/internal/config"
	"github.com/syndikat/teamliste/internal/queue"
	"github.com/syndikat/teamliste/internal/repository"
	"github.com/syndikat/teamliste/internal/service"
	"github.com/syndikat/teamliste/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   *zap.Logger
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resetPasswordReq struct {
	Username       string `json:"username"`
	NewPassword    string `json:"newPassword"`
	MasterPassword string `json:"masterPassword"`
}

type invalidateReq struct {
	MasterPassword string `json:"masterPassword"`
}

// checkMaster compares the submitted master password against the configured
// secret in constant time. The expected value never appears in responses or
// logs.
func (h *AuthHandler) checkMaster(submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(h.Cfg.MasterPassword)) == 1
}

// audit emits a break-glass audit event asynchronously; request handling
// never waits on the broker.
func (h *AuthHandler) audit(c echo.Context, action, username string, succeeded bool) {
	ev := queue.AuditEvent{
		EventID:    uuid.NewString(),
		Action:     action,
		Username:   username,
		SourceIP:   c.RealIP(),
		Succeeded:  succeeded,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = service.PublishAuditEvent(context.Background(), ev) }()
}

// Login verifies credentials, issues a session token and sets it as a
// cookie. Unknown usernames and wrong passwords produce an identical
// response so callers cannot enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be at least 3 characters and password at least 6"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, h.Cfg.SessionTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	maxAge := h.Cfg.SessionTTLDays * 24 * 60 * 60
	c.SetCookie(utils.SessionCookie(c.Request(), utils.SessionCookieName, tok.Token, maxAge))

	// Best effort; the login response does not depend on it.
	go func(id uint64) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Users.TouchLastSignedIn(ctx, id); err != nil {
			h.Log.Warn("touch last_signed_in failed", zap.Uint64("user_id", id), zap.Error(err))
		}
	}(u.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    u.Public(),
	})
}

// Logout clears the session cookie and the legacy cookie from the previous
// auth scheme. It always succeeds, including for anonymous callers; there
// is no server-side session state to tear down.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(utils.SessionCookie(c.Request(), utils.SessionCookieName, "", -1))
	c.SetCookie(utils.SessionCookie(c.Request(), utils.LegacyCookieName, "", -1))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me returns the authenticated user's public projection. SessionAuth loaded
// the user fresh from the store, so role changes are already visible here.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, u.Public())
}

// ResetPassword is the break-glass path for lost passwords: anyone holding
// the operator master password may set a new password for a user. The
// stored marker is bumped so every previously issued token for that user
// stops validating. The user is not logged in by this call.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be at least 3 characters and new password at least 6"})
	}
	if !h.checkMaster(req.MasterPassword) {
		h.Log.Warn("password reset rejected: bad master password",
			zap.String("target", req.Username), zap.String("ip", c.RealIP()))
		h.audit(c, queue.ActionPasswordReset, req.Username, false)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid master password"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByUsername(ctx, req.Username); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Users.UpdatePassword(ctx, req.Username, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.Log.Info("password reset via master password",
		zap.String("target", req.Username), zap.String("ip", c.RealIP()))
	h.audit(c, queue.ActionPasswordReset, req.Username, true)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "password updated successfully",
	})
}

// InvalidateAllSessions bumps every user's invalidation marker, forcing a
// global re-login. Master-password gated; typically used after a suspected
// credential leak. Safe to call repeatedly.
func (h *AuthHandler) InvalidateAllSessions(c echo.Context) error {
	var req invalidateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !h.checkMaster(req.MasterPassword) {
		h.Log.Warn("session invalidation rejected: bad master password",
			zap.String("ip", c.RealIP()))
		h.audit(c, queue.ActionSessionsInvalidate, "", false)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid master password"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.InvalidateAllSessions(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.Log.Info("all sessions invalidated", zap.String("ip", c.RealIP()))
	h.audit(c, queue.ActionSessionsInvalidate, "", true)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
