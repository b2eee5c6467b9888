package services

import (
	"context"
	"sync"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/metrics"
	"providerdash/internal/utils"
	"providerdash/internal/webpush"
	"providerdash/internal/wordpress"
)

// PushPlatform is the platform's notification facility: permission state,
// the existing subscription, and the subscribe call that doubles as the
// permission prompt. The application never mutates permission directly.
type PushPlatform interface {
	Permission(ctx context.Context) (models.Permission, error)
	Existing(ctx context.Context) (*models.PushSubscription, error)
	Subscribe(ctx context.Context, applicationServerKey []byte) (*models.PushSubscription, error)
	Drop(ctx context.Context) error
}

// PushState is what the view layer renders.
type PushState struct {
	Permission   models.Permission `json:"permission"`
	IsSubscribed bool              `json:"isSubscribed"`
	IsLoading    bool              `json:"isLoading"`
}

// PushService drives the subscription lifecycle. A backend save can fail
// after the platform subscribe succeeded; the service then reports
// unsubscribed and a retry resends the existing descriptor instead of
// subscribing again.
type PushService struct {
	platform PushPlatform
	wp       *wordpress.Client
	key      []byte

	mu    sync.Mutex
	state PushState
}

// NewPushService decodes the VAPID key up front; a malformed or missing key
// is a fatal configuration error for this subsystem only.
func NewPushService(platform PushPlatform, wp *wordpress.Client, vapidPublicKey string) (*PushService, error) {
	key, err := webpush.DecodeVAPIDKey(vapidPublicKey)
	if err != nil {
		return nil, err
	}
	return &PushService{
		platform: platform,
		wp:       wp,
		key:      key,
		state:    PushState{Permission: models.PermissionDefault},
	}, nil
}

// Bootstrap is the startup probe: read permission and any existing platform
// subscription. Strictly read-only; it never triggers a prompt.
func (s *PushService) Bootstrap(ctx context.Context) error {
	perm, err := s.platform.Permission(ctx)
	if err != nil {
		return err
	}
	sub, err := s.platform.Existing(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Permission = perm
	s.state.IsSubscribed = sub != nil
	s.mu.Unlock()
	return nil
}

// State returns a snapshot for the view layer.
func (s *PushService) State() PushState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RequestSubscription runs the subscribe flow: prompt (via the platform
// subscribe call), then persist the descriptor to the backend. Overlapping
// calls are ignored while one is in flight, so at most one platform
// subscribe happens. Denied permission short-circuits with no side effects.
func (s *PushService) RequestSubscription(ctx context.Context, session models.AuthSession) error {
	if !session.Valid() {
		return domain.AuthError{Msg: "login required"}
	}

	s.mu.Lock()
	if s.state.IsLoading {
		s.mu.Unlock()
		return nil
	}
	if s.state.Permission == models.PermissionDenied {
		s.mu.Unlock()
		return domain.PermissionDeniedError{
			Msg: "You have blocked notifications. Please enable them in your browser settings.",
		}
	}
	s.state.IsLoading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.IsLoading = false
		s.mu.Unlock()
	}()

	// An earlier subscribe may have succeeded at the platform while the
	// backend save failed; reuse that descriptor rather than prompting again.
	sub, err := s.platform.Existing(ctx)
	if err != nil {
		return err
	}
	if sub == nil {
		sub, err = s.platform.Subscribe(ctx, s.key)
		if err != nil {
			if domain.IsPermissionDenied(err) {
				s.mu.Lock()
				s.state.Permission = models.PermissionDenied
				s.state.IsSubscribed = false
				s.mu.Unlock()
			}
			return err
		}
	}

	if err := s.wp.SaveSubscription(ctx, session, *sub); err != nil {
		// The device stays subscribed at the platform; only the backend is
		// unaware. Reported as not subscribed so the user can retry.
		s.mu.Lock()
		s.state.IsSubscribed = false
		s.mu.Unlock()
		metrics.UpstreamError("save_subscription")
		return err
	}

	s.mu.Lock()
	s.state.IsSubscribed = true
	s.state.Permission = models.PermissionGranted
	s.mu.Unlock()
	utils.LogEvent("", "push", "subscribed", sub.Endpoint)
	return nil
}

// Unsubscribe drops the platform subscription. Best effort; the backend is
// not told (it learns when deliveries start failing).
func (s *PushService) Unsubscribe(ctx context.Context) error {
	s.mu.Lock()
	if s.state.IsLoading {
		s.mu.Unlock()
		return nil
	}
	s.state.IsLoading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.IsLoading = false
		s.mu.Unlock()
	}()

	if err := s.platform.Drop(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.IsSubscribed = false
	s.mu.Unlock()
	utils.LogEvent("", "push", "unsubscribed", "")
	return nil
}
