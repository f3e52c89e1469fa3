package helpers

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPublishing(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	msg, err := jsonPublishing(map[string]string{"type": "user.registered"}, at)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())
	assert.True(t, at.Equal(msg.Timestamp))
	assert.JSONEq(t, `{"type":"user.registered"}`, string(msg.Body))

	_, err = jsonPublishing(make(chan int), at)
	assert.Error(t, err)
}
