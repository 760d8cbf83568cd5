package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxDialBackoff = 30 * time.Second

// Publisher pushes engine events to a durable AMQP topic exchange so
// other processes (and other devices' hubs) know to refetch. The
// engine itself never depends on the broker: publication is
// fire-and-forget from the pipeline's point of view.
type Publisher struct {
	conn     *amqp091.Connection
	exchange string
	logger   *zap.Logger
}

// DialOptions configures the broker connection.
type DialOptions struct {
	URL      string
	Exchange string
	// Attempts bounds connection retries; 0 means one attempt.
	Attempts int
	// Backoff is the initial retry delay, doubled per attempt and
	// capped.
	Backoff time.Duration
	Logger  *zap.Logger
}

// Dial connects to the broker with exponential backoff and declares
// the topic exchange.
func Dial(ctx context.Context, opts DialOptions) (*Publisher, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	var conn *amqp091.Connection
	var lastErr error
	backoff := opts.Backoff
	for i := 1; i <= opts.Attempts; i++ {
		conn, lastErr = amqp091.Dial(opts.URL)
		if lastErr == nil {
			if i > 1 {
				opts.Logger.Info("broker connected", zap.Int("attempt", i))
			}
			break
		}
		opts.Logger.Warn("broker dial failed",
			zap.Int("attempt", i),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dial cancelled: %w", ctx.Err())
		case <-timer.C:
		}
		backoff *= 2
		if backoff > maxDialBackoff {
			backoff = maxDialBackoff
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("connect to broker after %d attempts: %w", opts.Attempts, lastErr)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(opts.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, exchange: opts.Exchange, logger: opts.Logger}, nil
}

// Publish sends an envelope under the given routing key and waits for
// the broker to confirm it.
func (p *Publisher) Publish(ctx context.Context, key string, env Envelope) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Timestamp:     env.Meta.Time,
		Body:          body,
	})
	if err != nil {
		return err
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("broker nacked %s event %s", env.Meta.Type, env.Meta.ID)
	}
	p.logger.Debug("published", zap.String("key", key), zap.String("exchange", p.exchange))
	return nil
}

// Close closes the broker connection.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
