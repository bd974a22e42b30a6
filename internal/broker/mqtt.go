package broker

import (
	"context"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MQTT is the paho-backed transport. The sensor publishes card ids as UTF-8
// text on the scan topic; prompts go out on a separate topic.
type MQTT struct {
	Broker   string
	Port     string
	ClientID string
	client   mqtt.Client
}

func NewMQTT(clientID string) *MQTT {
	m := &MQTT{
		Broker:   os.Getenv("MQTT_BROKER"),
		Port:     os.Getenv("MQTT_PORT"),
		ClientID: clientID,
	}

	if m.Broker == "" {
		m.Broker = "localhost"
	}
	if m.Port == "" {
		m.Port = "1883"
	}

	return m
}

func (m *MQTT) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%s", m.Broker, m.Port))
	opts.SetClientID(m.ClientID)

	opts.OnConnect = func(c mqtt.Client) {
		log.Infof("mqtt connection established broker %s:%s client %s", m.Broker, m.Port, m.ClientID)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Warnf("mqtt connection lost: %s", err)
	}

	m.client = mqtt.NewClient(opts)

	token := m.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	return nil
}

func (m *MQTT) Subscribe(topic string, h Handler) error {
	token := m.client.Subscribe(topic, 0, func(c mqtt.Client, msg mqtt.Message) {
		log.Infof("received message from topic %s", msg.Topic())
		h(msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe failed for topic %s: %w", topic, err)
	}

	return nil
}

func (m *MQTT) Publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("mqtt publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish failed for topic %s: %w", topic, err)
	}

	return nil
}

func (m *MQTT) Close() {
	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250) // 250ms grace period
		log.Info("mqtt disconnected")
	}
}
