package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "providerdash/internal/config"
	"providerdash/internal/dispatcher"
	"providerdash/internal/domain/models"
	router "providerdash/internal/http"
	h "providerdash/internal/http/handlers"
	"providerdash/internal/hub"
	"providerdash/internal/notifications"
	"providerdash/internal/pushgateway"
	"providerdash/internal/repositories"
	"providerdash/internal/services"
	"providerdash/internal/wordpress"
)

func main() {
	cfg, err := intconfig.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	intconfig.ConnectDB(cfg.Database.DSN)
	defer intconfig.CloseDB()

	apiHandlers, stopPush := buildAPI(cfg)
	defer stopPush()

	r := router.NewRouter(cfg, apiHandlers)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("provider dashboard listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	log.Println("stopped cleanly")
}

// buildAPI wires services, the client hub, the notification center and the
// optional push subsystem into the handler set. The returned stop function
// tears down the push stream.
func buildAPI(cfg *intconfig.Config) (*h.API, func()) {
	slots := repositories.SlotRepo{DB: intconfig.DB}
	wp := wordpress.NewClient()
	clientHub := hub.New()

	center := notifications.NewCenter(func(n models.Notification) error {
		clientHub.Broadcast(gin.H{"type": "SHOW_NOTIFICATION", "notification": n})
		return nil
	})

	disp := dispatcher.Dispatcher{
		Center: center,
		ListClients: func() []dispatcher.ClientPoster {
			clients := clientHub.Clients()
			out := make([]dispatcher.ClientPoster, len(clients))
			for i, c := range clients {
				out[i] = c
			}
			return out
		},
		OpenWindow: func(url string) error {
			clientHub.Broadcast(gin.H{"type": "OPEN_WINDOW", "url": url})
			return nil
		},
	}

	apiHandlers := &h.API{
		Auth:      services.AuthService{WP: wp, Slots: slots, SiteURL: cfg.WordPress.SiteURL},
		Dashboard: services.DashboardService{WP: wp, Slots: slots},
		Docs:      services.DocsService{},
		Hub:       clientHub,
		Dispatch:  disp,
		Center:    center,
	}

	if cfg.Push.VAPIDPublicKey == "" {
		log.Println("VAPID public key not configured; push notifications disabled")
		return apiHandlers, func() {}
	}

	gwCfg := pushgateway.Config{
		BaseURL:           cfg.Push.GatewayURL,
		Grant:             models.Permission(cfg.Push.Grant),
		ReconnectDelay:    cfg.Push.ReconnectDelay,
		MaxReconnectDelay: cfg.Push.MaxReconnectDelay,
	}
	platform := pushgateway.NewPlatform(gwCfg, slots)

	pushSvc, err := services.NewPushService(platform, wp, cfg.Push.VAPIDPublicKey)
	if err != nil {
		// A malformed key kills the push subsystem, not the dashboard.
		log.Printf("push disabled: %v", err)
		return apiHandlers, func() {}
	}
	if err := pushSvc.Bootstrap(context.Background()); err != nil {
		log.Printf("push state probe failed: %v", err)
	}

	listener := pushgateway.NewListener(platform, gwCfg, func(ctx context.Context, payload []byte) {
		if err := disp.HandlePush(ctx, payload); err != nil {
			log.Printf("push event handling failed: %v", err)
		}
	})
	listener.Start()

	apiHandlers.Push = pushSvc
	apiHandlers.StreamStatus = listener.Status
	return apiHandlers, listener.Stop
}
