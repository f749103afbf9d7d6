package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Dial connects to RabbitMQ, retrying with a growing pause until attempts run
// out or ctx ends.
func Dial(ctx context.Context, url string, attempts int, logger *zap.Logger) (*amqp.Connection, error) {
	var lastErr error
	for i := 0; i < max(attempts, 1); i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		logger.Warn("rabbitmq dial failed", zap.Int("attempt", i+1), zap.Error(err))

		backoff := min(time.Duration(i+1)*500*time.Millisecond, 5*time.Second)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("connect to RabbitMQ: %w", lastErr)
}
