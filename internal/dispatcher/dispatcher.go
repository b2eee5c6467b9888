package dispatcher

import (
	"context"
	"encoding/json"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/metrics"
	"providerdash/internal/notifications"
	"providerdash/internal/utils"
)

const (
	fallbackTitle = "New Notification"
	fallbackBody  = "Something new happened!"
	fallbackURL   = "/"

	notificationIcon  = "/favicon.ico"
	notificationBadge = "/favicon.ico"
)

// RefreshSignal tells a foreground page to re-fetch dashboard data.
type RefreshSignal struct {
	Type string `json:"type"`
}

const SignalRefreshData = "REFRESH_DATA"

// ClientPoster is one open foreground page.
type ClientPoster interface {
	Post(v any) error
}

// Dispatcher handles push and notification-click events. It keeps no state
// between events: every decision comes from the event payload and the
// injected queries, so restarts are invisible.
type Dispatcher struct {
	Center *notifications.Center

	// ListClients returns currently open foreground pages in connect order,
	// including pages this process is not yet controlling.
	ListClients func() []ClientPoster

	// OpenWindow opens (or focuses, the platform's choice) a window at url.
	OpenWindow func(url string) error
}

// HandlePush displays a notification for the message and, strictly after
// the display resolves, signals the first open foreground page to refresh.
// No page open means no signal; the signal is never queued.
func (d Dispatcher) HandlePush(ctx context.Context, payload []byte) error {
	var msg models.PushMessage
	if len(payload) > 0 {
		// Unparsable bodies fall back to the defaults, same as no body.
		_ = json.Unmarshal(payload, &msg)
	}

	if msg.Title == "" {
		msg.Title = fallbackTitle
	}
	if msg.Body == "" {
		msg.Body = fallbackBody
	}
	if msg.URL == "" {
		msg.URL = fallbackURL
	}

	shown, err := d.Center.Show(ctx, models.Notification{
		Title: msg.Title,
		Body:  msg.Body,
		Icon:  notificationIcon,
		Badge: notificationBadge,
		URL:   msg.URL,
	})
	if err != nil {
		return err
	}

	if d.ListClients == nil {
		return nil
	}
	clients := d.ListClients()
	if len(clients) == 0 {
		utils.LogEvent("", "dispatcher", "refresh_skipped", "no open clients")
		return nil
	}
	if err := clients[0].Post(RefreshSignal{Type: SignalRefreshData}); err != nil {
		// Fire-and-forget: a dead client is the hub's problem.
		utils.LogEvent("", "dispatcher", "refresh_post_failed", shown.ID)
		return nil
	}
	metrics.RefreshSignalSent()
	return nil
}

// HandleNotificationClick dismisses the notification and opens its target.
func (d Dispatcher) HandleNotificationClick(ctx context.Context, id string) error {
	n, ok := d.Center.Get(id)
	if !ok {
		return domain.NotFoundError{Resource: "notification"}
	}
	d.Center.Close(id)

	url := n.URL
	if url == "" {
		url = fallbackURL
	}
	if d.OpenWindow == nil {
		return nil
	}
	return d.OpenWindow(url)
}
