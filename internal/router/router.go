package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	handlers "github.com/oakline/banklink/internal/http"
	"github.com/oakline/banklink/internal/reports"
)

type Router struct {
	AuthHandler     *handlers.AuthHandler
	AccountHandler  *handlers.AccountHandler
	TransferHandler *handlers.TransferHandler
	ReportsHandler  *reports.Handler
	AuthMW          fiber.Handler

	TransferRateMax    int
	TransferRateWindow time.Duration
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	if r.AuthHandler != nil {
		app.Post("/api/auth/login", RateLimitAuth(), r.AuthHandler.Login)
		app.Post("/api/auth/logout", r.AuthMW, r.AuthHandler.Logout)
		app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	}

	if r.AccountHandler != nil {
		app.Get("/api/accounts", r.AuthMW, r.AccountHandler.List)
		app.Get("/api/accounts/:id/transactions", r.AuthMW, r.AccountHandler.Transactions)
	}

	if r.TransferHandler != nil {
		transferLimit := RateLimitTransfers(r.TransferRateMax, r.TransferRateWindow)
		app.Post("/api/transfers/preview", r.AuthMW, r.TransferHandler.Preview)
		app.Post("/api/transfers", r.AuthMW, transferLimit, r.TransferHandler.Submit)
	}

	if r.ReportsHandler != nil {
		app.Get("/api/accounts/:id/statement.pdf", r.AuthMW, r.ReportsHandler.StatementPDF)
	}
}
