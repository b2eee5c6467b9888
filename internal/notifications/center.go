package notifications

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"providerdash/internal/domain"
	"providerdash/internal/domain/models"
	"providerdash/internal/metrics"
)

const maxRecent = 50

// Center is the notification tray: it assigns ids, keeps the recent window
// and fans displays out to the foreground. Show returns only after the
// display call resolves, so callers may order follow-up messaging after it.
type Center struct {
	// Display renders the notification to whatever surface is attached.
	// Nil means notifications are recorded but not rendered.
	Display func(models.Notification) error

	mu     sync.Mutex
	recent []models.Notification
}

func NewCenter(display func(models.Notification) error) *Center {
	return &Center{Display: display}
}

// Show records and displays a notification, returning the stored copy with
// its assigned id.
func (c *Center) Show(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	c.mu.Lock()
	c.recent = append(c.recent, n)
	if len(c.recent) > maxRecent {
		c.recent = c.recent[len(c.recent)-maxRecent:]
	}
	c.mu.Unlock()

	if c.Display != nil {
		if err := c.Display(n); err != nil {
			return n, domain.InternalError{Msg: "notification display failed", Err: err}
		}
	}
	metrics.NotificationShown()
	return n, nil
}

// Get looks up a live notification by id.
func (c *Center) Get(id string) (models.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.recent {
		if n.ID == id {
			return n, true
		}
	}
	return models.Notification{}, false
}

// Close dismisses a notification.
func (c *Center) Close(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.recent {
		if n.ID == id {
			c.recent = append(c.recent[:i], c.recent[i+1:]...)
			return
		}
	}
}

// Recent returns the live notifications, oldest first.
func (c *Center) Recent() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.recent))
	copy(out, c.recent)
	return out
}
