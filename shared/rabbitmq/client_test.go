package rabbitmq

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disconnectedClient() *Client {
	return &Client{
		config: &Config{QueueName: "job_events_queue"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Disconnected(t *testing.T) {
	c := disconnectedClient()

	assert.False(t, c.IsConnected())

	err := c.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq is not connected")

	err = c.PublishWithRetry(context.Background(), Message{Body: []byte(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected to RabbitMQ")

	deliveries, err := c.Consume("worker-1", 10)
	require.Error(t, err)
	assert.Nil(t, deliveries)
}

func TestClient_CloseWithoutConnection(t *testing.T) {
	assert.NoError(t, disconnectedClient().Close())
}

func TestNewClient_UnreachableBroker(t *testing.T) {
	c, err := NewClient(&Config{
		Host:          "127.0.0.1",
		Port:          1,
		User:          "guest",
		Password:      "guest",
		VHost:         "/",
		RetryAttempts: 1,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "failed to connect to RabbitMQ after 1 attempts")
}
