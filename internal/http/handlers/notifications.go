package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const pushDisabledMsg = "push notifications are not configured on this deployment"

// GET /api/notifications/state
func (a *API) NotificationState(c *gin.Context) {
	if a.Push == nil {
		respondError(c, http.StatusServiceUnavailable, "not_configured", pushDisabledMsg)
		return
	}
	c.JSON(http.StatusOK, a.Push.State())
}

// POST /api/notifications/subscribe
func (a *API) Subscribe(c *gin.Context) {
	if a.Push == nil {
		respondError(c, http.StatusServiceUnavailable, "not_configured", pushDisabledMsg)
		return
	}
	session, ok := a.requireSession(c)
	if !ok {
		return
	}

	if err := a.Push.RequestSubscription(c.Request.Context(), session); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.Push.State())
}

// POST /api/notifications/unsubscribe
func (a *API) Unsubscribe(c *gin.Context) {
	if a.Push == nil {
		respondError(c, http.StatusServiceUnavailable, "not_configured", pushDisabledMsg)
		return
	}
	if _, ok := a.requireSession(c); !ok {
		return
	}

	if err := a.Push.Unsubscribe(c.Request.Context()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.Push.State())
}

// GET /api/notifications
func (a *API) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": a.Center.Recent()})
}

// POST /api/notifications/:id/click
// A UI surface reporting that the user clicked the rendered notification.
func (a *API) NotificationClick(c *gin.Context) {
	if err := a.Dispatch.HandleNotificationClick(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
