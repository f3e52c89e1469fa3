package notify

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const handleTimeout = 15 * time.Second

// Run handles deliveries until ctx is done or msgs closes. Malformed messages
// are dropped; other failures are requeued once and dropped on redelivery.
func (p *Processor) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			p.deliver(ctx, d)
		}
	}
}

func (p *Processor) deliver(ctx context.Context, d amqp.Delivery) {
	c, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	err := p.Handle(c, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrMalformed):
		p.log().WithError(err).Warn("dropping event")
		_ = d.Nack(false, false)
	default:
		requeue := !d.Redelivered
		p.log().WithError(err).WithField("requeue", requeue).Error("event processing failed")
		_ = d.Nack(false, requeue)
	}
}
