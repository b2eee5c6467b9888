package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	intconfig "providerdash/internal/config"
)

// GET /api/health
func (a *API) Health(c *gin.Context) {
	dbStatus := "ok"
	if err := intconfig.EnsureDB(); err != nil {
		dbStatus = "down"
	}

	payload := gin.H{
		"status":  "ok",
		"db":      dbStatus,
		"clients": a.Hub.Count(),
		"push":    a.Push != nil,
	}
	if a.StreamStatus != nil {
		st := a.StreamStatus()
		payload["push_stream"] = gin.H{
			"connected":  st.Connected,
			"last_error": st.LastError,
		}
	}
	c.JSON(http.StatusOK, payload)
}

// GET /ws
func (a *API) ServeWS(c *gin.Context) {
	if err := a.Hub.Serve(c.Writer, c.Request); err != nil {
		RespondError(c, http.StatusBadRequest, "websocket upgrade failed", err)
	}
}
