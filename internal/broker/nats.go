package broker

import (
	"context"
	"os"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Nats is the alternate transport for deployments where the sensor bridge
// publishes through a NATS server instead of an MQTT broker.
type Nats struct {
	Url   string
	Token string
	Conn  *nats.Conn

	subs []*nats.Subscription
}

func NewNats() *Nats {
	n := &Nats{
		Url:   os.Getenv("NATS_URL"),
		Token: os.Getenv("NATS_TOKEN"),
	}

	if n.Url == "" {
		n.Url = "nats://localhost:4224"
	}

	return n
}

func (n *Nats) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name("cardlock"),
	}

	// if token provided
	if n.Token != "" {
		opts = append(opts, nats.Token(n.Token))
	}

	conn, err := nats.Connect(n.Url, opts...)
	if err != nil {
		return err
	}

	n.Conn = conn
	log.Infof("nats connection established %s", n.Url)

	return nil
}

func (n *Nats) Subscribe(topic string, h Handler) error {
	sub, err := n.Conn.Subscribe(topic, func(msg *nats.Msg) {
		log.Infof("received message from topic %s", msg.Subject)
		h(msg.Data)
	})
	if err != nil {
		return err
	}

	n.subs = append(n.subs, sub)

	return nil
}

func (n *Nats) Publish(topic string, payload []byte) error {
	err := n.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

func (n *Nats) Close() {
	for _, sub := range n.subs {
		sub.Unsubscribe()
	}
	if n.Conn != nil {
		n.Conn.Close()
	}
}
