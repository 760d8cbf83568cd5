package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/propflow/commshub/internal/bus"
)

// EventPublisher is the outbound side of the bridge; *Publisher
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
}

// Bridge forwards engine bus events to the broker. It subscribes to
// every namespace the engine publishes under and maps the event kind
// straight onto the AMQP routing key.
type Bridge struct {
	bus      *bus.Bus
	pub      EventPublisher
	producer string
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewBridge creates a bridge; producer names this process in envelope
// metadata.
func NewBridge(b *bus.Bus, pub EventPublisher, producer string, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{bus: b, pub: pub, producer: producer, logger: logger}
}

// Start subscribes to engine events and forwards them until the
// context is cancelled or Stop is called.
func (br *Bridge) Start(ctx context.Context) {
	ctx, br.cancel = context.WithCancel(ctx)

	statusCh, unsubStatus := br.bus.Subscribe("status.", 256)
	inboxCh, unsubInbox := br.bus.Subscribe("inbox.", 256)

	go func() {
		defer unsubStatus()
		defer unsubInbox()
		for {
			select {
			case evt := <-statusCh:
				br.forward(ctx, evt)
			case evt := <-inboxCh:
				br.forward(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops forwarding.
func (br *Bridge) Stop() {
	if br.cancel != nil {
		br.cancel()
	}
}

func (br *Bridge) forward(ctx context.Context, evt bus.Event) {
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	env := NewEnvelope(evt.Kind, br.producer, evt.Payload, ts)
	if err := br.pub.Publish(ctx, evt.Kind, env); err != nil {
		// Broker trouble never blocks the pipeline; drop and log.
		br.logger.Warn("event publish failed", zap.String("kind", evt.Kind), zap.Error(err))
	}
}
