package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ItemDetails is a flat, display-ready projection of a DashboardRecord.
// Derived on demand, never persisted.
type ItemDetails struct {
	ID             int64  `json:"id"`
	Date           string `json:"date"`
	Title          string `json:"title"`
	TripName       string `json:"trip_name"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	Status         string `json:"status"`
	Travelers      int    `json:"travelers"`
	TotalPrice     string `json:"total_price,omitempty"`
	PaymentGateway string `json:"payment_gateway"`
}

// FormatItemDetails flattens the nested booking meta into display fields.
// Every missing field degrades to a safe fallback; a zero total suppresses
// the price entirely.
func FormatItemDetails(rec DashboardRecord) ItemDetails {
	meta := rec.Meta

	name := ""
	email := "N/A"
	if bd := meta.BillingDetails; bd != nil {
		name = strings.TrimSpace(bd.FirstName + " " + bd.LastName)
		if bd.Email != "" {
			email = bd.Email
		}
	}

	travelers := 0
	if bs := meta.BookingSetting; bs != nil && bs.PlaceOrder != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(bs.PlaceOrder.Traveler)); err == nil {
			travelers = n
		}
	}

	status := meta.BookingStatus
	if status == "" {
		status = "N/A"
	}
	gateway := meta.PaymentMethod
	if gateway == "" {
		gateway = "N/A"
	}

	tripName := rec.TripName
	if tripName == "" {
		tripName = "Unknown Trip"
	}

	return ItemDetails{
		ID:             rec.ID,
		Date:           rec.Date,
		Title:          rec.Title.Rendered,
		TripName:       tripName,
		CustomerName:   name,
		CustomerEmail:  email,
		Status:         status,
		Travelers:      travelers,
		TotalPrice:     formatTotalPrice(meta),
		PaymentGateway: gateway,
	}
}

func formatTotalPrice(meta BookingMeta) string {
	total := 0.0
	if ci := meta.CartInfo; ci != nil && ci.Totals != nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(ci.Totals.Total), 64); err == nil {
			total = v
		}
	}
	if total <= 0 {
		return ""
	}
	return currencySymbol(meta) + fmt.Sprintf("%.2f", total)
}

// currencySymbol prefers the first order item's currency symbol, then the
// cart currency, then "$". Order items are keyed by trip id; keys are sorted
// so the choice is stable.
func currencySymbol(meta BookingMeta) string {
	keys := make([]string, 0, len(meta.OrderItems))
	for k := range meta.OrderItems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		item := meta.OrderItems[k]
		if item.Currency != nil && item.Currency.Symbol != "" {
			return item.Currency.Symbol
		}
	}
	if meta.CartInfo != nil && meta.CartInfo.Currency != "" {
		return meta.CartInfo.Currency
	}
	return "$"
}
