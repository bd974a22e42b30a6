package broker

import "context"

// Handler receives raw inbound payloads from the subscribed topic.
type Handler func(payload []byte)

// Transport is the message-transport client used to receive card scans and
// publish user-facing prompts. Selected by the TRANSPORT env var.
type Transport interface {
	Connect(ctx context.Context) error
	Subscribe(topic string, h Handler) error
	Publish(topic string, payload []byte) error
	Close()
}
