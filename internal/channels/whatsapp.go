package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oatsbridge/oatsbridge/internal/bus"
	"github.com/oatsbridge/oatsbridge/internal/config/channel"
)

const (
	defaultBridgeURL = "ws://localhost:3001"
	reconnectDelay   = 5 * time.Second
	defaultDedupSize = 1024
)

// bridgeMessage is one frame received from the WhatsApp bridge.
type bridgeMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	PN        string `json:"pn"`
	Sender    string `json:"sender"`
	PushName  string `json:"pushName"`
	Content   string `json:"content"`
	Timestamp any    `json:"timestamp"`
	IsGroup   bool   `json:"isGroup"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

// WhatsAppChannel connects to the WhatsApp bridge via WebSocket.
type WhatsAppChannel struct {
	Base
	cfg  channel.WhatsAppConfig
	seen *lru.Cache[string, struct{}]

	// reconnect is the pause between connection attempts.
	reconnect time.Duration

	mu        sync.Mutex // guards conn and connected; gorilla allows one writer
	conn      *websocket.Conn
	connected bool
}

// NewWhatsAppChannel creates the channel. Redelivered bridge messages are
// dropped by id using an LRU of cfg.DedupSize entries.
func NewWhatsAppChannel(cfg channel.WhatsAppConfig, b bus.Bus) (*WhatsAppChannel, error) {
	size := cfg.DedupSize
	if size <= 0 {
		size = defaultDedupSize
	}
	seen, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: dedup cache: %w", err)
	}
	return &WhatsAppChannel{
		Base:      NewBase(bus.ChannelWhatsApp, b, cfg.AllowFrom),
		cfg:       cfg,
		seen:      seen,
		reconnect: reconnectDelay,
	}, nil
}

func (w *WhatsAppChannel) Name() string { return string(bus.ChannelWhatsApp) }

func (w *WhatsAppChannel) Start(ctx context.Context) error {
	bridgeURL := w.cfg.BridgeURL
	if bridgeURL == "" {
		bridgeURL = defaultBridgeURL
	}
	slog.Info("whatsapp: connecting to bridge", "url", bridgeURL)

	for {
		if err := w.connectOnce(ctx, bridgeURL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("whatsapp: connection lost, reconnecting", "err", err, "delay", w.reconnect)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.reconnect):
		}
	}
}

func (w *WhatsAppChannel) connectOnce(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	w.setConn(conn, true)
	defer func() {
		w.setConn(nil, false)
		conn.Close()
	}()

	// Unblock ReadMessage when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	slog.Info("whatsapp: connected to bridge")

	if w.cfg.BridgeToken != "" {
		auth, _ := json.Marshal(map[string]string{"type": "auth", "token": w.cfg.BridgeToken})
		if err := w.write(auth); err != nil {
			return fmt.Errorf("whatsapp: auth: %w", err)
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		w.handleBridgeMessage(raw)
	}
}

func (w *WhatsAppChannel) handleBridgeMessage(raw []byte) {
	var data bridgeMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Debug("whatsapp: ignoring malformed frame", "err", err)
		return
	}
	switch data.Type {
	case "message":
		w.handleIncoming(data)
	case "status":
		slog.Info("whatsapp: status", "status", data.Status)
		w.mu.Lock()
		w.connected = data.Status == "connected"
		w.mu.Unlock()
	case "qr":
		slog.Info("whatsapp: scan QR code in the bridge terminal")
	case "error":
		slog.Error("whatsapp: bridge error", "error", data.Error)
	}
}

func (w *WhatsAppChannel) handleIncoming(data bridgeMessage) {
	if data.ID != "" {
		if ok, _ := w.seen.ContainsOrAdd(data.ID, struct{}{}); ok {
			slog.Debug("whatsapp: duplicate message dropped", "id", data.ID)
			return
		}
	}
	if strings.TrimSpace(data.Content) == "" {
		return
	}

	userID := data.PN
	if userID == "" {
		userID = data.Sender
	}
	senderID, _, _ := strings.Cut(userID, "@")

	content := data.Content
	if content == "[Voice Message]" {
		content = "[Voice Message: Transcription not available for WhatsApp yet]"
	}

	chatID := data.Sender
	if chatID == "" {
		chatID = userID
	}

	msg := bus.NewInboundMessage(bus.ChannelWhatsApp, senderID, chatID, content)
	msg.SetMessageID(data.ID)
	msg.SetSenderName(data.PushName)
	msg.SetGroup(data.IsGroup)
	msg.SetMetadata(map[string]any{
		"message_id": data.ID,
		"timestamp":  data.Timestamp,
	})
	w.HandleMessage(msg)
}

func (w *WhatsAppChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	payload, _ := json.Marshal(map[string]string{
		"type": "send",
		"to":   msg.ChatID(),
		"text": msg.Content(),
	})
	return w.write(payload)
}

func (w *WhatsAppChannel) write(payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil || !w.connected {
		return fmt.Errorf("whatsapp: bridge not connected")
	}
	return w.conn.WriteMessage(websocket.TextMessage, payload)
}

func (w *WhatsAppChannel) setConn(conn *websocket.Conn, connected bool) {
	w.mu.Lock()
	w.conn = conn
	w.connected = connected
	w.mu.Unlock()
}
