package scan

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const promptMessage = "Please scan your card"

// Publisher is the outbound side of the message transport.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Gateway fronts the sensor: it asks the user to scan and blocks until the
// next card identifier arrives on the dispatcher. Both the registration and
// the unlock flows go through it.
type Gateway struct {
	publisher   Publisher
	dispatcher  *Dispatcher
	promptTopic string
	timeout     time.Duration // zero means wait forever
}

func NewGateway(publisher Publisher, dispatcher *Dispatcher, promptTopic string, timeout time.Duration) *Gateway {
	return &Gateway{
		publisher:   publisher,
		dispatcher:  dispatcher,
		promptTopic: promptTopic,
		timeout:     timeout,
	}
}

// RequestScan publishes the scan prompt and blocks for the next card id.
// Prompt delivery is fire-and-forget; a publish failure is logged, the wait
// still happens. The returned error is ctx.Err() when the wait was canceled
// or timed out.
func (g *Gateway) RequestScan(ctx context.Context) (string, error) {
	if err := g.publisher.Publish(g.promptTopic, []byte(promptMessage)); err != nil {
		log.Errorf("Error [Gateway.RequestScan] prompt publish failed: %s", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	return g.dispatcher.Wait(ctx)
}
