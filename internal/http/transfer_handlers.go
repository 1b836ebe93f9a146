package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oakline/banklink/internal/auth"
	"github.com/oakline/banklink/internal/domain"
	"github.com/oakline/banklink/internal/money"
	"github.com/oakline/banklink/internal/transfer"
)

type TransferHandler struct {
	JWTSecret  []byte
	ConfirmTTL time.Duration
	Log        zerolog.Logger
}

type transferBody struct {
	domain.TransferRequest
	ConfirmToken string `json:"confirm_token,omitempty"`
}

type previewResponse struct {
	Summary      string `json:"summary"`
	Amount       string `json:"amount"`
	FromLabel    string `json:"from_label"`
	ToLabel      string `json:"to_label"`
	ConfirmToken string `json:"confirm_token"`
}

// Preview validates the request and, when valid, returns the
// human-readable summary the user must confirm plus the signed token that
// proves they did. Validation failures never reach the upstream.
func (h *TransferHandler) Preview(c *fiber.Ctx) error {
	s := sessionFromCtx(c)
	if s == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body transferBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	catalog := s.Catalog()
	result := transfer.Validate(body.TransferRequest, catalog)
	if !result.OK() {
		return validationError(c, result)
	}

	from, _ := catalog.Lookup(body.FromAccountID)
	to, _ := catalog.Lookup(body.ToAccountID)

	token, err := auth.GenerateConfirmToken(h.JWTSecret, s.UserID, body.TransferRequest, result.Amount, h.ConfirmTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not create confirmation token")
	}

	amount := money.Format(result.Amount, from.Currency)
	return c.JSON(previewResponse{
		Summary:      "Transfer " + amount + " from " + from.Label() + " to " + to.Label(),
		Amount:       result.Amount.String(),
		FromLabel:    from.Label(),
		ToLabel:      to.Label(),
		ConfirmToken: token,
	})
}

// Submit executes a confirmed transfer: one upstream call, no retry. The
// optimistic record is appended to the session feeds and superseded by the
// next refetch.
func (h *TransferHandler) Submit(c *fiber.Ctx) error {
	s := sessionFromCtx(c)
	if s == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body transferBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	catalog := s.Catalog()
	result := transfer.Validate(body.TransferRequest, catalog)
	if !result.OK() {
		return validationError(c, result)
	}

	if body.ConfirmToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "confirmation required: preview the transfer first")
	}
	if err := auth.VerifyConfirmToken(h.JWTSecret, body.ConfirmToken, s.UserID, body.TransferRequest, result.Amount); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "confirmation does not match this transfer")
	}

	from, _ := catalog.Lookup(body.FromAccountID)
	outcome, err := s.Executor().Execute(userContext(c), body.TransferRequest, result.Amount, from.Currency)
	if err != nil {
		if errors.Is(err, transfer.ErrInFlight) {
			return fiber.NewError(fiber.StatusConflict, "a transfer is already being processed")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "transfer failed")
	}
	if !outcome.Submitted {
		h.Log.Error().Err(outcome.Reason).Str("user_id", s.UserID).Msg("transfer rejected upstream")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     "transfer_failed",
			"retryable": true,
		})
	}

	s.AppendTransaction(outcome.Record)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction": outcome.Record})
}

// validationError maps a validator result onto a 422 with the tagged code
// and a message specific enough to fix the form.
func validationError(c *fiber.Ctx, result transfer.Result) error {
	body := fiber.Map{
		"code":  string(result.Code),
		"error": result.Message(),
	}
	if result.Code == transfer.CodeInsufficientFunds {
		body["available"] = result.Available.String()
		body["account_id"] = result.AccountID
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
}
