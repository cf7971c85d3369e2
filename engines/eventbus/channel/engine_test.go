package channel

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/helpers"
	"github.com/jakehl/goid"
	"github.com/stretchr/testify/assert"
)

func TestChannelEngineRoundTrip(t *testing.T) {
	logger := helpers.SetupLogger(config.Info, "eventbus-test", "EventBus")

	engine, err := NewChannelEngine(nil, "test-service", logger)
	assert.NoError(t, err)

	sub, err := engine.Subscriber()
	assert.NoError(t, err)
	pub, err := engine.Publisher()
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := sub.Subscribe(ctx, "telemetry.submitted")
	assert.NoError(t, err)

	payload := []byte(`{"device_id":42}`)
	err = pub.Publish("telemetry.submitted", message.NewMessage(goid.NewV4UUID().String(), payload))
	assert.NoError(t, err)

	select {
	case msg := <-messages:
		assert.Equal(t, payload, []byte(msg.Payload))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
