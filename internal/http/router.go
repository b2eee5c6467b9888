package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "providerdash/internal/config"
	h "providerdash/internal/http/handlers"
	"providerdash/internal/http/middleware"
	"providerdash/internal/metrics"
)

func NewRouter(cfg *intconfig.Config, apiHandlers *h.API) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		metrics.Middleware(),
	)

	_ = r.SetTrustedProxies(nil)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws", apiHandlers.ServeWS)

	api := r.Group("/api")
	{
		api.GET("/health", apiHandlers.Health)

		auth := api.Group("/auth")
		auth.POST("/login", apiHandlers.Login)
		auth.POST("/logout", apiHandlers.Logout)
		auth.GET("/session", apiHandlers.Session)

		api.GET("/dashboard", apiHandlers.GetDashboard)
		api.POST("/dashboard/refresh", apiHandlers.RefreshDashboard)

		records := api.Group("/records")
		records.GET("/:kind/:id", apiHandlers.GetRecordDetails)
		records.GET("/:kind/:id/pdf", apiHandlers.GetRecordPDF)

		notif := api.Group("/notifications")
		notif.GET("", apiHandlers.ListNotifications)
		notif.GET("/state", apiHandlers.NotificationState)
		notif.POST("/subscribe", apiHandlers.Subscribe)
		notif.POST("/unsubscribe", apiHandlers.Unsubscribe)
		notif.POST("/:id/click", apiHandlers.NotificationClick)
	}

	return r
}
