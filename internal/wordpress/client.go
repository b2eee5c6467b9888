package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
)

const (
	tokenPath            = "/wp-json/jwt-auth/v1/token"
	dashboardPath        = "/wp-json/my-listings/v1/dashboard"
	saveSubscriptionPath = "/wp-json/my-listings/v1/save-subscription"
)

// Client talks to the WordPress backend. All endpoints are owned by the
// jwt-auth and my-listings plugins; this side only does request plumbing.
type Client struct {
	HTTP *http.Client
}

func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) http() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// LoginResponse is the jwt-auth token payload. Extra fields are ignored.
type LoginResponse struct {
	Token           string `json:"token"`
	UserDisplayName string `json:"user_display_name"`
	UserEmail       string `json:"user_email"`
	UserNicename    string `json:"user_nicename"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Login exchanges credentials for a JWT. A non-success response surfaces the
// backend's message verbatim as an AuthError.
func (c *Client) Login(ctx context.Context, siteURL, username, password string) (LoginResponse, error) {
	var out LoginResponse

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, siteURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http().Do(req)
	if err != nil {
		return out, domain.UnavailableError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "Invalid credentials."
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return out, domain.AuthError{Msg: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, domain.UnavailableError{Op: "login", Err: err}
	}
	return out, nil
}

// DashboardResponse is the my-listings dashboard payload.
type DashboardResponse struct {
	Bookings  []models.DashboardRecord `json:"bookings"`
	Enquiries []models.DashboardRecord `json:"enquiries"`
}

// FetchDashboard pulls the provider's bookings and enquiries. Missing
// collections come back as empty slices.
func (c *Client) FetchDashboard(ctx context.Context, session models.AuthSession) (DashboardResponse, error) {
	var out DashboardResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, session.SiteURL+dashboardPath, nil)
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := c.http().Do(req)
	if err != nil {
		return out, domain.UnavailableError{Op: "dashboard fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, domain.UnavailableError{
			Op:  "dashboard fetch",
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, domain.UnavailableError{Op: "dashboard fetch", Err: err}
	}
	if out.Bookings == nil {
		out.Bookings = []models.DashboardRecord{}
	}
	if out.Enquiries == nil {
		out.Enquiries = []models.DashboardRecord{}
	}
	return out, nil
}

// SaveSubscription forwards the platform subscription descriptor verbatim to
// the backend. Response body is ignored; only the status matters.
func (c *Client) SaveSubscription(ctx context.Context, session models.AuthSession, sub models.PushSubscription) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return domain.InternalError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, session.SiteURL+saveSubscriptionPath, bytes.NewReader(body))
	if err != nil {
		return domain.InternalError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := c.http().Do(req)
	if err != nil {
		return domain.UnavailableError{Op: "save subscription", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.UnavailableError{
			Op:  "save subscription",
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	return nil
}
