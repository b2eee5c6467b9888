package models

// Permission is the platform notification permission. The application never
// sets it directly; it only requests a prompt.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func (p Permission) Valid() bool {
	return p == PermissionDefault || p == PermissionGranted || p == PermissionDenied
}

// PushSubscription is the platform-issued descriptor identifying a device
// endpoint. Forwarded verbatim to the backend's save-subscription endpoint.
type PushSubscription struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushMessage is the JSON body of an incoming push event. All fields are
// optional; the dispatcher supplies fallbacks.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Notification is a displayed system notification. The target URL rides
// along as opaque metadata for the click handler.
type Notification struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
	Badge string `json:"badge"`
	URL   string `json:"url"`
}
