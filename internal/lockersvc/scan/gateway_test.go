package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	topics   []string
	payloads []string
	err      error
}

func (f *fakePublisher) Publish(topic string, payload []byte) error {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, string(payload))
	return f.err
}

func TestGateway_PromptsThenReceives(t *testing.T) {
	d := NewDispatcher()
	pub := &fakePublisher{}
	g := NewGateway(pub, d, "prompts", 0)

	d.Deliver("111")

	got, err := g.RequestScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111", got)

	require.Len(t, pub.topics, 1)
	assert.Equal(t, "prompts", pub.topics[0])
	assert.Equal(t, "Please scan your card", pub.payloads[0])
}

func TestGateway_PromptFailureIsNotFatal(t *testing.T) {
	d := NewDispatcher()
	pub := &fakePublisher{err: errors.New("broker down")}
	g := NewGateway(pub, d, "prompts", 0)

	d.Deliver("111")

	got, err := g.RequestScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111", got)
}

func TestGateway_TimeoutBoundedWait(t *testing.T) {
	d := NewDispatcher()
	g := NewGateway(&fakePublisher{}, d, "prompts", 20*time.Millisecond)

	start := time.Now()
	_, err := g.RequestScan(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
