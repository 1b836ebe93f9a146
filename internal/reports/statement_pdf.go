package reports

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/phpdave11/gofpdf"

	"github.com/oakline/banklink/internal/feed"
	"github.com/oakline/banklink/internal/money"
	"github.com/oakline/banklink/internal/session"
)

// Handler renders downloadable statements from the in-memory feed.
type Handler struct{}

const maxRows = 200

// StatementPDF renders the account's grouped feed as a PDF statement, one
// section per date bucket.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	s, _ := c.Locals("session").(*session.Session)
	if s == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	accountID := c.Params("id")
	f, ok := s.Feed(accountID)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "account not found")
	}
	if !f.Loaded() {
		if err := f.Refresh(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "could not load transactions")
		}
	}
	groups := f.Buckets()

	account, _ := s.Catalog().Lookup(accountID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; labels carry the ellipsis rune.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 48)
	pdf.SetTextColor(235, 235, 235)
	pdf.Text(25, 140, "OAKLINE")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, tr("Account: "+account.Label()))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr("Holder: "+s.FullName))
	pdf.Ln(10)

	colW := []float64{30, 78, 28, 46}
	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(colW[0], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "COUNTERPARTY / NOTE", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[2], 8, "STATUS", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[3], 8, "AMOUNT", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(30, 30, 30)
	}

	rows := 0
	truncated := false
	for _, group := range groups {
		if truncated {
			break
		}

		if pdf.GetY() > 260 {
			pdf.AddPage()
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(0, 9, group.Title, "", 1, "L", false, 0, "")
		writeHeader()

		for _, item := range group.Items {
			if rows >= maxRows {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.CellFormat(0, 8, tr("…truncated (too many rows)"), "1", 1, "C", false, 0, "")
				truncated = true
				break
			}
			rows++

			if pdf.GetY() > 270 {
				pdf.AddPage()
				writeHeader()
			}

			title := shortID(item.CounterAccountID)
			if item.Note != "" {
				title += " / " + trimTo(item.Note, 60)
			}
			status := string(item.Status)
			amount := money.FormatSigned(item.Amount, item.Currency, item.Direction == feed.DirectionSent)

			pdf.CellFormat(colW[0], 8, item.Date.Format("2006-01-02"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(colW[1], 8, tr(title), "1", 0, "L", false, 0, "")
			pdf.CellFormat(colW[2], 8, status, "1", 0, "C", false, 0, "")
			pdf.CellFormat(colW[3], 8, amount, "1", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	if rows == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 10, "No transactions in this period.", "", 1, "L", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated by Oakline Banklink - "+time.Now().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "pdf build failed: "+err.Error())
	}

	filename := "statement-" + shortID(accountID) + ".pdf"
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
