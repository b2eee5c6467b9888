package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/repositories"
	"providerdash/internal/services"
	"providerdash/internal/wordpress"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newDashboardRouter(db *sql.DB) *gin.Engine {
	slots := repositories.SlotRepo{DB: db}
	api := &API{
		Auth:      services.AuthService{WP: wordpress.NewClient(), Slots: slots},
		Dashboard: services.DashboardService{WP: wordpress.NewClient(), Slots: slots},
	}
	r := gin.New()
	r.GET("/api/dashboard", api.GetDashboard)
	r.POST("/api/dashboard/refresh", api.RefreshDashboard)
	return r
}

func sessionRow(siteURL string) string {
	return fmt.Sprintf(`{"token":"tok","siteUrl":%q,"username":"Guide Co"}`, siteURL)
}

type dashboardBody struct {
	Bookings  []models.DashboardRecord `json:"bookings"`
	Enquiries []models.DashboardRecord `json:"enquiries"`
	Stale     bool                     `json:"stale"`
}

func TestGetDashboardStaleFallback(t *testing.T) {
	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer wp.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(sessionRow(wp.URL)))
	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotBookings).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow(`[{"id":11,"date":"2025-05-01","title":{"rendered":"Booking #11"}}]`))
	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotEnquiries).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	newDashboardRouter(db).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var body dashboardBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Stale {
		t.Errorf("upstream failure must mark the payload stale")
	}
	if len(body.Bookings) != 1 || body.Bookings[0].ID != 11 {
		t.Errorf("cached bookings not served: %+v", body.Bookings)
	}
	if body.Enquiries == nil || len(body.Enquiries) != 0 {
		t.Errorf("enquiries should be an empty list, got %#v", body.Enquiries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("cache reads: %v", err)
	}
}

func TestRefreshDashboardSurfacesUpstreamFailure(t *testing.T) {
	wp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer wp.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(sessionRow(wp.URL)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil)
	newDashboardRouter(db).ServeHTTP(w, req)

	// Forced refresh must report the failure instead of going stale.
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "upstream_unavailable" {
		t.Errorf("code: %v", body["code"])
	}
}

func TestGetDashboardWithoutSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	newDashboardRouter(db).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "auth_error" {
		t.Errorf("code: %v", body["code"])
	}
}

func TestRespondDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ValidationError{Field: "kind"}, http.StatusBadRequest, "validation_error"},
		{domain.AuthError{Msg: "login required"}, http.StatusUnauthorized, "auth_error"},
		{domain.PermissionDeniedError{}, http.StatusForbidden, "permission_denied"},
		{domain.NotFoundError{Resource: "booking"}, http.StatusNotFound, "not_found"},
		{domain.UnavailableError{Op: "dashboard fetch"}, http.StatusBadGateway, "upstream_unavailable"},
		{domain.ConfigError{Name: "vapid_public_key missing"}, http.StatusServiceUnavailable, "not_configured"},
		{domain.InternalError{Msg: "boom"}, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		r := gin.New()
		r.GET("/fail", func(c *gin.Context) {
			RespondDomainError(c, tc.err)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

		if w.Code != tc.status {
			t.Errorf("%T: status %d, want %d", tc.err, w.Code, tc.status)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%T: decode: %v", tc.err, err)
		}
		if body["code"] != tc.code {
			t.Errorf("%T: code %v, want %s", tc.err, body["code"], tc.code)
		}
	}
}
