package models

// DashboardRecord is a booking or enquiry post as returned by the
// my-listings dashboard endpoint. Field names follow the WP Travel Engine
// meta layout; everything nested is optional.
type DashboardRecord struct {
	ID       int64         `json:"id"`
	Date     string        `json:"date"`
	Title    RenderedTitle `json:"title"`
	TripName string        `json:"trip_name,omitempty"`
	Meta     BookingMeta   `json:"meta"`
}

type RenderedTitle struct {
	Rendered string `json:"rendered"`
}

type BookingMeta struct {
	BookingStatus  string               `json:"wp_travel_engine_booking_status,omitempty"`
	PaymentMethod  string               `json:"wp_travel_engine_booking_payment_method,omitempty"`
	CartInfo       *CartInfo            `json:"cart_info,omitempty"`
	BillingDetails *BillingDetails      `json:"wptravelengine_billing_details,omitempty"`
	BookingSetting *BookingSetting      `json:"wp_travel_engine_booking_setting,omitempty"`
	OrderItems     map[string]OrderItem `json:"wte_order_items,omitempty"`
}

type CartInfo struct {
	Totals   *CartTotals `json:"totals,omitempty"`
	Currency string      `json:"currency,omitempty"`
}

type CartTotals struct {
	Total string `json:"total,omitempty"`
}

type BillingDetails struct {
	FirstName string `json:"fname,omitempty"`
	LastName  string `json:"lname,omitempty"`
	Email     string `json:"email,omitempty"`
}

type BookingSetting struct {
	PlaceOrder *PlaceOrder `json:"place_order,omitempty"`
}

type PlaceOrder struct {
	Traveler string `json:"traveler,omitempty"`
}

type OrderItem struct {
	Currency *ItemCurrency `json:"currency,omitempty"`
}

type ItemCurrency struct {
	Symbol string `json:"symbol,omitempty"`
}

// RecordKind distinguishes the two dashboard collections.
type RecordKind string

const (
	KindBooking RecordKind = "booking"
	KindEnquiry RecordKind = "enquiry"
)

func (k RecordKind) Valid() bool {
	return k == KindBooking || k == KindEnquiry
}
