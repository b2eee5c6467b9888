package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/repositories"
	"providerdash/internal/wordpress"
)

func TestRefreshRewritesCacheSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header: %q", got)
		}
		w.Write([]byte(`{
			"bookings":  [{"id":11,"date":"2025-05-01","title":{"rendered":"Booking #11"}}],
			"enquiries": [{"id":21,"date":"2025-05-02","title":{"rendered":"Enquiry #21"}}]
		}`))
	}))
	defer srv.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS storage_slots").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS storage_slots").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO storage_slots").
		WithArgs(repositories.SlotBookings, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO storage_slots").
		WithArgs(repositories.SlotEnquiries, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := DashboardService{WP: wordpress.NewClient(), Slots: repositories.SlotRepo{DB: db}}
	session := models.AuthSession{Token: "tok", SiteURL: srv.URL}

	data, err := svc.Refresh(context.Background(), session)
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if len(data.Bookings) != 1 || data.Bookings[0].ID != 11 {
		t.Errorf("bookings: %+v", data.Bookings)
	}
	if len(data.Enquiries) != 1 || data.Enquiries[0].ID != 21 {
		t.Errorf("enquiries: %+v", data.Enquiries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("cache slots not rewritten: %v", err)
	}
}

func TestRefreshRequiresSession(t *testing.T) {
	svc := DashboardService{}
	if _, err := svc.Refresh(context.Background(), models.AuthSession{}); !domain.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestRefreshLeavesCacheOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	svc := DashboardService{WP: wordpress.NewClient(), Slots: repositories.SlotRepo{DB: db}}
	session := models.AuthSession{Token: "tok", SiteURL: srv.URL}

	if _, err := svc.Refresh(context.Background(), session); !domain.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	// No writes were expected and none may have happened.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("cache touched on failure: %v", err)
	}
}

func TestCachedDefaultsToEmptySlices(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotBookings).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotEnquiries).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	svc := DashboardService{Slots: repositories.SlotRepo{DB: db}}
	data := svc.Cached(context.Background())
	if data.Bookings == nil || data.Enquiries == nil {
		t.Fatalf("cached lists must never be nil: %+v", data)
	}
	if len(data.Bookings) != 0 || len(data.Enquiries) != 0 {
		t.Fatalf("expected empty lists, got %+v", data)
	}
}

func TestFindRecord(t *testing.T) {
	data := DashboardData{
		Bookings:  []models.DashboardRecord{{ID: 11}},
		Enquiries: []models.DashboardRecord{{ID: 21}},
	}
	svc := DashboardService{}

	rec, err := svc.FindRecord(data, models.KindBooking, 11)
	if err != nil || rec.ID != 11 {
		t.Errorf("booking lookup: rec=%+v err=%v", rec, err)
	}
	rec, err = svc.FindRecord(data, models.KindEnquiry, 21)
	if err != nil || rec.ID != 21 {
		t.Errorf("enquiry lookup: rec=%+v err=%v", rec, err)
	}
	if _, err := svc.FindRecord(data, models.KindBooking, 99); !domain.IsNotFound(err) {
		t.Errorf("missing id: got %v", err)
	}
	if _, err := svc.FindRecord(data, "invoice", 11); !domain.IsValidation(err) {
		t.Errorf("bad kind: got %v", err)
	}
}
