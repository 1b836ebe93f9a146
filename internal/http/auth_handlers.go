package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oakline/banklink/internal/auth"
	"github.com/oakline/banklink/internal/domain"
	"github.com/oakline/banklink/internal/session"
	"github.com/oakline/banklink/internal/transfer"
	"github.com/oakline/banklink/internal/upstream"
)

type AuthHandler struct {
	Upstream   upstream.Service
	Sessions   *session.Store
	JWTSecret  []byte
	SessionTTL time.Duration
	Log        zerolog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string         `json:"token"`
	UserID   string         `json:"user_id"`
	FullName string         `json:"full_name"`
	Accounts domain.Catalog `json:"accounts"`
}

// Login authenticates against the upstream bank, pulls the account
// catalog and opens the user's session. Credentials are never stored or
// verified locally.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}

	ctx := userContext(c)

	identity, err := h.Upstream.Login(ctx, body.Email, body.Password)
	if err != nil {
		if upstream.IsStatus(err, fiber.StatusUnauthorized) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		h.Log.Error().Err(err).Msg("upstream login failed")
		return fiber.NewError(fiber.StatusBadGateway, "login unavailable, try again")
	}

	catalog, err := h.Upstream.FetchAccounts(ctx, identity.UserID)
	if err != nil {
		h.Log.Error().Err(err).Str("user_id", identity.UserID).Msg("account fetch failed")
		return fiber.NewError(fiber.StatusBadGateway, "could not load accounts")
	}

	executor := transfer.NewExecutor(h.Upstream)
	s := session.New(identity.UserID, identity.FullName, catalog, h.Upstream, executor, h.Log)
	h.Sessions.Put(s)

	token, err := auth.GenerateSessionToken(h.JWTSecret, identity.UserID, h.SessionTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.JSON(loginResponse{
		Token:    token,
		UserID:   identity.UserID,
		FullName: identity.FullName,
		Accounts: catalog,
	})
}

// Logout closes the session. The bearer token simply expires; there is no
// revocation list.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	s := sessionFromCtx(c)
	if s != nil {
		h.Sessions.Delete(s.UserID)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	s := sessionFromCtx(c)
	if s == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(fiber.Map{
		"user_id":   s.UserID,
		"full_name": s.FullName,
	})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

const sessionLocal = "session"

// sessionFromCtx returns the session placed in locals by the auth
// middleware, or nil.
func sessionFromCtx(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(sessionLocal).(*session.Session)
	return s
}

// SessionMiddleware validates the bearer token and resolves the session.
func SessionMiddleware(secret []byte, sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := auth.ParseSessionToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		s, ok := sessions.Get(userID)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "session expired, log in again")
		}

		c.Locals(sessionLocal, s)
		return c.Next()
	}
}
