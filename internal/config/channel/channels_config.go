package channel

type ChannelsConfig struct {
	WhatsApp WhatsAppConfig `json:"whatsapp"`
}

func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		WhatsApp: DefaultWhatsAppConfig(),
	}
}
