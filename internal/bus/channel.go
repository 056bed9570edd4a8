package bus

type ChannelType string

const (
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelPortal   ChannelType = "portal"
	ChannelCLI      ChannelType = "cli"
)

// RoutingKey joins a channel and chat id, e.g. "whatsapp:123@s.whatsapp.net".
func RoutingKey(channel ChannelType, chatID string) string {
	if chatID == "" {
		return string(channel)
	}
	return string(channel) + ":" + chatID
}
