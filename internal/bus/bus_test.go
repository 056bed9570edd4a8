package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBus_RoundTrip(t *testing.T) {
	b := NewMessageBus(2)

	in := NewInboundMessage(ChannelWhatsApp, "alice", "123@s.whatsapp.net", "hi")
	in.SetMessageID("m1")
	b.PublishInbound(in)
	require.Equal(t, 1, b.InboundSize())

	got := <-b.InboundChan()
	assert.Equal(t, "m1", got.MessageID())
	assert.Equal(t, ChannelWhatsApp, got.Channel())
	assert.Equal(t, "hi", got.Content())

	b.PublishOutbound(NewOutboundMessage(ChannelWhatsApp, got.ChatID(), "hello"))
	out := <-b.OutboundChan()
	assert.Equal(t, "123@s.whatsapp.net", out.ChatID())
	assert.Equal(t, "hello", out.Content())
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "portal:c1", RoutingKey(ChannelPortal, "c1"))
	assert.Equal(t, "cli", RoutingKey(ChannelCLI, ""))
}

func TestPreview_Truncates(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	m := NewInboundMessage(ChannelCLI, "u", "c", string(long))
	assert.Len(t, m.Preview(), 83)
}
