package services

import (
	"context"
	"fmt"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/metrics"
	"providerdash/internal/repositories"
	"providerdash/internal/utils"
	"providerdash/internal/wordpress"
)

// DashboardData is both the API payload and the cached form of the record
// lists. Ordering is whatever the backend returned.
type DashboardData struct {
	Bookings  []models.DashboardRecord `json:"bookings"`
	Enquiries []models.DashboardRecord `json:"enquiries"`
}

// DashboardService fetches and caches the provider's bookings and
// enquiries. The cache is a stale-while-revalidate placeholder only; the
// backend response always wins.
type DashboardService struct {
	WP        *wordpress.Client
	Slots     repositories.SlotRepo
	RequestID string
}

func (s DashboardService) wp() *wordpress.Client {
	if s.WP != nil {
		return s.WP
	}
	return wordpress.NewClient()
}

// Cached returns the slot contents, best effort. Empty slots yield empty
// slices so callers never see nil.
func (s DashboardService) Cached(ctx context.Context) DashboardData {
	data := DashboardData{
		Bookings:  []models.DashboardRecord{},
		Enquiries: []models.DashboardRecord{},
	}
	_, _ = s.Slots.Load(ctx, repositories.SlotBookings, &data.Bookings)
	_, _ = s.Slots.Load(ctx, repositories.SlotEnquiries, &data.Enquiries)
	return data
}

// Refresh pulls fresh lists from the backend and rewrites the cache slots.
// On failure the cache is left untouched.
func (s DashboardService) Refresh(ctx context.Context, session models.AuthSession) (DashboardData, error) {
	if !session.Valid() {
		return DashboardData{}, domain.AuthError{Msg: "login required"}
	}

	resp, err := s.wp().FetchDashboard(ctx, session)
	if err != nil {
		metrics.UpstreamError("dashboard")
		return DashboardData{}, err
	}

	data := DashboardData{Bookings: resp.Bookings, Enquiries: resp.Enquiries}
	if err := s.Slots.Save(ctx, repositories.SlotBookings, data.Bookings); err != nil {
		return data, err
	}
	if err := s.Slots.Save(ctx, repositories.SlotEnquiries, data.Enquiries); err != nil {
		return data, err
	}

	utils.LogEvent(s.RequestID, "dashboard", "refresh",
		fmt.Sprintf("bookings=%d enquiries=%d", len(data.Bookings), len(data.Enquiries)))
	return data, nil
}

// FindRecord locates a record by kind and id within the given data.
func (s DashboardService) FindRecord(data DashboardData, kind models.RecordKind, id int64) (models.DashboardRecord, error) {
	var list []models.DashboardRecord
	switch kind {
	case models.KindBooking:
		list = data.Bookings
	case models.KindEnquiry:
		list = data.Enquiries
	default:
		return models.DashboardRecord{}, domain.ValidationError{Field: "kind", Msg: "must be booking or enquiry"}
	}
	for _, rec := range list {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.DashboardRecord{}, domain.NotFoundError{Resource: string(kind)}
}

// Details projects a record into its flat display form.
func (s DashboardService) Details(rec models.DashboardRecord) models.ItemDetails {
	return models.FormatItemDetails(rec)
}
