package pushgateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/repositories"
	"providerdash/internal/utils"
	"providerdash/internal/webpush"
)

// Config carries the push gateway connection settings.
type Config struct {
	// BaseURL of the push gateway's registration API.
	BaseURL string

	// Grant stands in for the user's answer to the permission prompt in this
	// headless deployment: "denied" rejects the prompt, anything else grants.
	Grant models.Permission

	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
}

// Platform adapts the push gateway to the subscription manager's platform
// contract: it owns the permission state, the UA keys and the descriptor.
type Platform struct {
	cfg   Config
	slots repositories.SlotRepo
	http  *http.Client
}

func NewPlatform(cfg Config, slots repositories.SlotRepo) *Platform {
	if !cfg.Grant.Valid() {
		cfg.Grant = models.PermissionDefault
	}
	return &Platform{
		cfg:   cfg,
		slots: slots,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

type permissionState struct {
	Permission models.Permission `json:"permission"`
}

// Permission reports the current grant without prompting.
func (p *Platform) Permission(ctx context.Context) (models.Permission, error) {
	var state permissionState
	found, err := p.slots.Load(ctx, repositories.SlotPushState, &state)
	if err != nil {
		return models.PermissionDefault, err
	}
	if found && state.Permission.Valid() {
		return state.Permission, nil
	}
	return p.cfg.Grant, nil
}

// Existing returns the persisted subscription descriptor, if any. Read-only.
func (p *Platform) Existing(ctx context.Context) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	found, err := p.slots.Load(ctx, repositories.SlotSubscription, &sub)
	if err != nil || !found {
		return nil, err
	}
	return &sub, nil
}

type subscribeRequest struct {
	ApplicationServerKey string `json:"application_server_key"`
	P256dh               string `json:"p256dh"`
	Auth                 string `json:"auth"`
}

type subscribeResponse struct {
	Endpoint string `json:"endpoint"`
}

// Subscribe registers a new endpoint with the gateway. This is the call that
// resolves the permission prompt: a denied grant fails here, before any
// network traffic.
func (p *Platform) Subscribe(ctx context.Context, applicationServerKey []byte) (*models.PushSubscription, error) {
	perm, err := p.Permission(ctx)
	if err != nil {
		return nil, err
	}
	if perm == models.PermissionDenied {
		return nil, domain.PermissionDeniedError{}
	}

	keys, err := webpush.GenerateUAKeys()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}

	body, _ := json.Marshal(subscribeRequest{
		ApplicationServerKey: base64.RawURLEncoding.EncodeToString(applicationServerKey),
		P256dh:               keys.P256dh(),
		Auth:                 keys.Auth(),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/subscribe", bytes.NewReader(body))
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, domain.UnavailableError{Op: "push subscribe", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.UnavailableError{
			Op:  "push subscribe",
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var sr subscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil || sr.Endpoint == "" {
		return nil, domain.UnavailableError{Op: "push subscribe", Err: err}
	}

	sub := &models.PushSubscription{
		Endpoint: sr.Endpoint,
		Keys: models.SubscriptionKeys{
			P256dh: keys.P256dh(),
			Auth:   keys.Auth(),
		},
	}

	if err := p.slots.Save(ctx, repositories.SlotUAKeys, keys.Export()); err != nil {
		return nil, err
	}
	if err := p.slots.Save(ctx, repositories.SlotSubscription, sub); err != nil {
		return nil, err
	}
	if err := p.slots.Save(ctx, repositories.SlotPushState, permissionState{Permission: models.PermissionGranted}); err != nil {
		return nil, err
	}

	utils.LogEvent("", "pushgateway", "subscribed", sub.Endpoint)
	return sub, nil
}

// Drop unregisters the endpoint and forgets local key material. Best effort
// on the wire; local state is always cleared.
func (p *Platform) Drop(ctx context.Context) error {
	sub, err := p.Existing(ctx)
	if err != nil {
		return err
	}
	if sub != nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, sub.Endpoint, nil)
		if err == nil {
			if resp, doErr := p.http.Do(req); doErr == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}
	}
	_ = p.slots.Delete(ctx, repositories.SlotSubscription)
	_ = p.slots.Delete(ctx, repositories.SlotUAKeys)
	return nil
}

// Keys loads the persisted UA key material for payload decryption.
func (p *Platform) Keys(ctx context.Context) (*webpush.UAKeys, error) {
	var stored webpush.StoredUAKeys
	found, err := p.slots.Load(ctx, repositories.SlotUAKeys, &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	keys, err := webpush.ImportUAKeys(stored)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return keys, nil
}
