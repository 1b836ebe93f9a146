package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oakline/banklink/internal/feed"
	"github.com/oakline/banklink/internal/upstream"
)

type AccountHandler struct {
	Upstream upstream.Service
	Log      zerolog.Logger
}

// List returns the account catalog. ?refresh=1 refetches it from upstream
// and replaces the session copy wholesale.
func (h *AccountHandler) List(c *fiber.Ctx) error {
	s := sessionFromCtx(c)
	if s == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if c.QueryBool("refresh") {
		catalog, err := h.Upstream.FetchAccounts(userContext(c), s.UserID)
		if err != nil {
			h.Log.Error().Err(err).Str("user_id", s.UserID).Msg("account refresh failed")
			return fiber.NewError(fiber.StatusBadGateway, "could not refresh accounts")
		}
		s.ReplaceCatalog(catalog)
	}

	return c.JSON(fiber.Map{"accounts": s.Catalog()})
}

// Transactions returns the grouped feed for one owned account. ?filter
// switches between all/sent/received without refetching; ?refresh=1 (or a
// feed that has never loaded) triggers a refetch first.
func (h *AccountHandler) Transactions(c *fiber.Ctx) error {
	s := sessionFromCtx(c)
	if s == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	accountID := c.Params("id")
	f, ok := s.Feed(accountID)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}

	filter, err := feed.ParseFilter(c.Query("filter"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "filter must be all, sent or received")
	}
	f.SetFilter(filter)

	if c.QueryBool("refresh") || !f.Loaded() {
		if err := f.Refresh(userContext(c)); err != nil {
			h.Log.Warn().Err(err).Str("account_id", accountID).Msg("transaction fetch failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":     "could not load transactions",
				"retryable": true,
			})
		}
	}

	return c.JSON(fiber.Map{
		"account_id": accountID,
		"filter":     string(f.Filter()),
		"groups":     f.Buckets(),
	})
}
