package enums

// Channel identifies which delivery path a gateway token arrived on. The
// callback channel is the synchronous browser redirect; the webhook channel
// is the asynchronous server-to-server push.
type Channel string

const (
	ChannelCallback Channel = "callback"
	ChannelWebhook  Channel = "webhook"
)

// String implements fmt.Stringer.
func (c Channel) String() string {
	return string(c)
}

// MetadataKey names the metadata sub-field a channel archives its raw
// payload under.
func (c Channel) MetadataKey() string {
	switch c {
	case ChannelCallback:
		return "callbackRaw"
	case ChannelWebhook:
		return "webhookRaw"
	}
	return string(c)
}
