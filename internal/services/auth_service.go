package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/repositories"
	"providerdash/internal/utils"
	"providerdash/internal/wordpress"
)

// AuthService owns the single provider session: login against the WordPress
// jwt-auth endpoint, persistence in the session slot, logout cleanup.
type AuthService struct {
	WP        *wordpress.Client
	Slots     repositories.SlotRepo
	SiteURL   string
	RequestID string
}

func (s AuthService) wp() *wordpress.Client {
	if s.WP != nil {
		return s.WP
	}
	return wordpress.NewClient()
}

// Login exchanges credentials for a session and persists it. There is at
// most one active session; a new login replaces the old one.
func (s AuthService) Login(ctx context.Context, username, password string) (models.AuthSession, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.AuthSession{}, domain.ValidationError{Field: "username", Msg: "required"}
	}
	if password == "" {
		return models.AuthSession{}, domain.ValidationError{Field: "password", Msg: "required"}
	}
	if s.SiteURL == "" {
		return models.AuthSession{}, domain.ConfigError{Name: "wordpress site_url missing"}
	}

	resp, err := s.wp().Login(ctx, s.SiteURL, username, password)
	if err != nil {
		return models.AuthSession{}, err
	}

	session := models.AuthSession{
		Token:    resp.Token,
		SiteURL:  s.SiteURL,
		Username: resp.UserDisplayName,
	}
	if session.Username == "" {
		session.Username = username
	}

	if err := s.Slots.Save(ctx, repositories.SlotSession, session); err != nil {
		return models.AuthSession{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "login", "session established for "+session.Username)
	return session, nil
}

// Restore loads the persisted session. An expired token counts as no
// session and clears the slot.
func (s AuthService) Restore(ctx context.Context) (models.AuthSession, bool, error) {
	var session models.AuthSession
	found, err := s.Slots.Load(ctx, repositories.SlotSession, &session)
	if err != nil || !found {
		return models.AuthSession{}, false, err
	}
	if !session.Valid() || tokenExpired(session.Token) {
		_ = s.Slots.Delete(ctx, repositories.SlotSession)
		return models.AuthSession{}, false, nil
	}
	return session, true, nil
}

// Logout drops the session and the cached record lists.
func (s AuthService) Logout(ctx context.Context) error {
	if err := s.Slots.Delete(ctx, repositories.SlotSession); err != nil {
		return err
	}
	_ = s.Slots.Delete(ctx, repositories.SlotBookings)
	_ = s.Slots.Delete(ctx, repositories.SlotEnquiries)
	utils.LogEvent(s.RequestID, "auth", "logout", "session cleared")
	return nil
}

// tokenExpired inspects the JWT exp claim without verifying the signature;
// verification is the backend's job, this only avoids presenting a token
// the backend is guaranteed to reject. No exp claim means usable.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
