package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"providerdash/internal/domain/models"
	"providerdash/internal/utils"
)

// DocsService renders a dashboard record as a downloadable detail sheet.
type DocsService struct {
	RequestID string
}

// GenerateRecordPDF builds the PDF and a suggested filename.
func (s DocsService) GenerateRecordPDF(kind models.RecordKind, rec models.DashboardRecord) ([]byte, string, error) {
	details := models.FormatItemDetails(rec)
	utils.LogEvent(s.RequestID, "docs", "generate_pdf", fmt.Sprintf("kind=%s id=%d", kind, rec.ID))
	return buildRecordPDF(kind, details)
}

func buildRecordPDF(kind models.RecordKind, d models.ItemDetails) ([]byte, string, error) {
	heading := "BOOKING DETAILS"
	if kind == models.KindEnquiry {
		heading = "ENQUIRY DETAILS"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(heading, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, heading)
	pdf.Ln(12)

	price := d.TotalPrice
	if price == "" {
		price = "-"
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Reference      : #%d", d.ID),
		fmt.Sprintf("Trip           : %s", safe(d.TripName, "-")),
		fmt.Sprintf("Date           : %s", safe(d.Date, "-")),
		fmt.Sprintf("Customer       : %s", safe(d.CustomerName, "-")),
		fmt.Sprintf("Email          : %s", safe(d.CustomerEmail, "-")),
		fmt.Sprintf("Travelers      : %d", d.Travelers),
		fmt.Sprintf("Status         : %s", safe(d.Status, "-")),
		fmt.Sprintf("Total          : %s", price),
		fmt.Sprintf("Payment Method : %s", safe(d.PaymentGateway, "-")),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Generated from the provider dashboard. Amounts reflect the booking at the time of export.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s-%d.pdf", kind, d.ID)
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
