package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"providerdash/internal/dispatcher"
	"providerdash/internal/domain/models"
	"providerdash/internal/http/middleware"
	"providerdash/internal/hub"
	"providerdash/internal/notifications"
	"providerdash/internal/pushgateway"
	"providerdash/internal/services"
)

// API bundles the wired services for the route handlers. Push is nil when
// the VAPID key is absent; only the notification routes notice.
type API struct {
	Auth      services.AuthService
	Dashboard services.DashboardService
	Docs      services.DocsService
	Push      *services.PushService
	Hub       *hub.Hub
	Dispatch  dispatcher.Dispatcher
	Center    *notifications.Center

	// StreamStatus reports the push gateway stream, when one is running.
	StreamStatus func() pushgateway.ConnectionStatus
}

func (a *API) auth(c *gin.Context) services.AuthService {
	s := a.Auth
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (a *API) dashboard(c *gin.Context) services.DashboardService {
	s := a.Dashboard
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (a *API) docs(c *gin.Context) services.DocsService {
	s := a.Docs
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// requireSession restores the stored session or answers 401.
func (a *API) requireSession(c *gin.Context) (models.AuthSession, bool) {
	session, ok, err := a.auth(c).Restore(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return models.AuthSession{}, false
	}
	if !ok {
		respondError(c, http.StatusUnauthorized, "auth_error", "login required")
		return models.AuthSession{}, false
	}
	return session, true
}
