package pushgateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"providerdash/internal/metrics"
	"providerdash/internal/webpush"
)

// Listener holds the websocket to the push gateway and hands decrypted push
// payloads to the dispatcher. The gateway may start, stop and restart the
// stream at will; the listener carries no state across deliveries beyond the
// connection itself.
type Listener struct {
	platform *Platform
	cfg      Config

	// OnPush receives each decrypted push message body.
	OnPush func(ctx context.Context, payload []byte)

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	lastError error

	done chan struct{}
}

// ConnectionStatus mirrors the gateway stream state for the health surface.
type ConnectionStatus struct {
	Connected bool
	LastError string
	LastSeen  time.Time
}

func NewListener(platform *Platform, cfg Config, onPush func(ctx context.Context, payload []byte)) *Listener {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if cfg.MaxReconnectDelay <= 0 {
		cfg.MaxReconnectDelay = 30 * time.Second
	}
	return &Listener{
		platform: platform,
		cfg:      cfg,
		OnPush:   onPush,
		done:     make(chan struct{}),
	}
}

// Start begins the connection loop.
func (l *Listener) Start() {
	go l.connectionLoop()
}

// Stop closes the stream and stops reconnecting.
func (l *Listener) Stop() {
	close(l.done)
	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
	}
	l.mu.Unlock()
}

func (l *Listener) Status() ConnectionStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	errStr := ""
	if l.lastError != nil {
		errStr = l.lastError.Error()
	}
	return ConnectionStatus{Connected: l.connected, LastError: errStr}
}

func (l *Listener) connectionLoop() {
	delay := l.cfg.ReconnectDelay

	for {
		select {
		case <-l.done:
			return
		default:
		}

		keys, err := l.connect()
		if err != nil {
			l.setError(err)

			select {
			case <-l.done:
				return
			case <-time.After(delay):
			}

			delay *= 2
			if delay > l.cfg.MaxReconnectDelay {
				delay = l.cfg.MaxReconnectDelay
			}
			continue
		}

		delay = l.cfg.ReconnectDelay
		l.readLoop(keys)
	}
}

var errListenerStopped = errors.New("listener stopped")

// connect dials the stream endpoint of the current subscription. No
// subscription yet is not an error worth logging loudly; the loop just
// keeps waiting for one to appear.
func (l *Listener) connect() (*webpush.UAKeys, error) {
	select {
	case <-l.done:
		return nil, errListenerStopped
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := l.platform.Existing(ctx)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("no push subscription yet")
	}
	keys, err := l.platform.Keys(ctx)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		return nil, fmt.Errorf("subscription present but key material missing")
	}

	conn, _, err := websocket.DefaultDialer.Dial(streamURL(sub.Endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	l.mu.Lock()
	// Stop may have run while dialing; Stop closes whatever conn is
	// installed under mu, so the check and the install must share the lock.
	select {
	case <-l.done:
		l.mu.Unlock()
		conn.Close()
		return nil, errListenerStopped
	default:
	}
	l.conn = conn
	l.connected = true
	l.lastError = nil
	l.mu.Unlock()

	log.Printf("push stream connected: %s", sub.Endpoint)
	return keys, nil
}

func (l *Listener) readLoop(keys *webpush.UAKeys) {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			l.setError(err)
			conn.Close()
			return
		}

		plaintext, err := webpush.Decrypt(keys, data)
		if err != nil {
			// Undecryptable frames are dropped; the next one stands alone.
			log.Printf("push payload rejected: %v", err)
			continue
		}

		metrics.PushMessageReceived()
		if l.OnPush != nil {
			l.OnPush(context.Background(), plaintext)
		}
	}
}

func (l *Listener) setError(err error) {
	l.mu.Lock()
	l.connected = false
	l.lastError = err
	l.mu.Unlock()
}

// streamURL rewrites the subscription endpoint to its websocket scheme.
func streamURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "https://") {
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	}
	if strings.HasPrefix(endpoint, "http://") {
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	}
	return endpoint
}
