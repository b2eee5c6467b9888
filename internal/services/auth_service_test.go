package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"

	"providerdash/internal/domain"
	"providerdash/internal/repositories"
	"providerdash/internal/wordpress"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestLoginPersistsSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"token":             token,
			"user_display_name": "Guide Co",
		})
	}))
	defer srv.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	payload := fmt.Sprintf(`{"token":%q,"siteUrl":%q,"username":"Guide Co"}`, token, srv.URL)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS storage_slots").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO storage_slots").
		WithArgs(repositories.SlotSession, payload).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := AuthService{
		WP:      wordpress.NewClient(),
		Slots:   repositories.SlotRepo{DB: db},
		SiteURL: srv.URL,
	}
	session, err := svc.Login(context.Background(), "guide", "secret")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if session.Token != token {
		t.Errorf("token not carried into session")
	}
	if session.Username != "Guide Co" {
		t.Errorf("username: got %q", session.Username)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("session was not persisted: %v", err)
	}
}

func TestLoginValidatesInput(t *testing.T) {
	svc := AuthService{SiteURL: "https://example.com"}
	if _, err := svc.Login(context.Background(), "  ", "pw"); !domain.IsValidation(err) {
		t.Errorf("blank username: got %v", err)
	}
	if _, err := svc.Login(context.Background(), "guide", ""); !domain.IsValidation(err) {
		t.Errorf("blank password: got %v", err)
	}
}

func TestLoginSurfacesBackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "The password you entered is incorrect.",
		})
	}))
	defer srv.Close()

	svc := AuthService{WP: wordpress.NewClient(), SiteURL: srv.URL}
	_, err := svc.Login(context.Background(), "guide", "wrong")
	if !domain.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if err.Error() != "The password you entered is incorrect." {
		t.Errorf("backend message lost: %q", err.Error())
	}
}

func TestRestoreReturnsPersistedSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	payload := fmt.Sprintf(`{"token":%q,"siteUrl":"https://example.com","username":"Guide Co"}`, token)
	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	svc := AuthService{Slots: repositories.SlotRepo{DB: db}}
	session, ok, err := svc.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore error: %v", err)
	}
	if !ok || session.Username != "Guide Co" {
		t.Fatalf("session not restored: ok=%v session=%+v", ok, session)
	}
}

func TestRestoreClearsExpiredSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(-time.Hour))
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	payload := fmt.Sprintf(`{"token":%q,"siteUrl":"https://example.com","username":"Guide Co"}`, token)
	mock.ExpectQuery("SELECT payload FROM storage_slots").
		WithArgs(repositories.SlotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))
	mock.ExpectExec("DELETE FROM storage_slots").
		WithArgs(repositories.SlotSession).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := AuthService{Slots: repositories.SlotRepo{DB: db}}
	_, ok, err := svc.Restore(context.Background())
	if err != nil {
		t.Fatalf("restore error: %v", err)
	}
	if ok {
		t.Fatalf("expired token must not restore a session")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expired session slot was not cleared: %v", err)
	}
}

func TestLogoutClearsSessionAndCaches(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	for _, slot := range []string{repositories.SlotSession, repositories.SlotBookings, repositories.SlotEnquiries} {
		mock.ExpectExec("DELETE FROM storage_slots").
			WithArgs(slot).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	svc := AuthService{Slots: repositories.SlotRepo{DB: db}}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("logout left state behind: %v", err)
	}
}
