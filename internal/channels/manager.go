package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oatsbridge/oatsbridge/internal/bus"
	"github.com/oatsbridge/oatsbridge/internal/config/channel"
	"github.com/oatsbridge/oatsbridge/internal/schema"
)

// Manager owns all enabled channels and routes outbound messages.
type Manager struct {
	channels map[string]schema.Channel
	bus      bus.Bus
}

// NewManager creates a Manager and initialises all enabled channels.
func NewManager(cfg channel.ChannelsConfig, b bus.Bus) (*Manager, error) {
	m := &Manager{
		channels: make(map[string]schema.Channel),
		bus:      b,
	}

	if cfg.WhatsApp.Enabled {
		ch, err := NewWhatsAppChannel(cfg.WhatsApp, b)
		if err != nil {
			return nil, err
		}
		m.Register(ch)
	}
	return m, nil
}

// Register adds ch, replacing any channel with the same name.
func (m *Manager) Register(ch schema.Channel) {
	m.channels[ch.Name()] = ch
	slog.Info("channel enabled", "name", ch.Name())
}

// EnabledChannels returns the names of all enabled channels.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	return names
}

// StartAll starts all channels concurrently and dispatches outbound messages.
// Blocks until ctx is cancelled and every channel has returned.
func (m *Manager) StartAll(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.dispatchOutbound(ctx)
	}()

	for name, ch := range m.channels {
		wg.Add(1)
		go func(n string, c schema.Channel) {
			defer wg.Done()
			slog.Info("starting channel", "name", n)
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("channel exited with error", "name", n, "err", err)
			}
		}(name, ch)
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// dispatchOutbound reads from the outbound bus and routes each message to
// the appropriate channel's Send method.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-m.bus.OutboundChan():
			if err := m.send(ctx, msg); err != nil {
				slog.Error("send error", "channel", msg.Channel(), "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) send(ctx context.Context, msg bus.OutboundMessage) error {
	ch, ok := m.channels[string(msg.Channel())]
	if !ok {
		return fmt.Errorf("unknown channel %q", msg.Channel())
	}
	return ch.Send(ctx, msg)
}
