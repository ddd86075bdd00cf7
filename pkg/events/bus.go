// Package events is the in-process event source: device bridges publish UI state
// changes and waits subscribe to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/logger"
)

// Topic carries every UI event.
const Topic = "ui.events"

const subscriberBuffer = 64

// Bus fans events out to subscribers. Events published while nobody is subscribed are
// dropped. It implements core.EventSource.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

var _ core.EventSource = (*Bus)(nil)

// NewBus creates a Bus backed by an in-memory watermill channel.
func NewBus() *Bus {
	log := logger.Watermill().With(watermill.LogFields{"topic": Topic})
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{
				BlockPublishUntilSubscriberAck: false,
			},
			log,
		),
		logger: log,
	}
}

// Publish sends ev to every current subscriber. A zero Time is set to now.
func (b *Bus) Publish(ev core.Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubSub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe delivers events accepted by filter (all events when nil) until ctx is done,
// then closes the channel. Events published after Subscribe returns are delivered.
func (b *Bus) Subscribe(ctx context.Context, filter func(core.Event) bool) (<-chan core.Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan core.Event, subscriberBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var ev core.Event
				err := json.Unmarshal(msg.Payload, &ev)
				msg.Ack()
				if err != nil {
					b.logger.Error("dropping undecodable event", err, watermill.LogFields{"uuid": msg.UUID})
					continue
				}
				if filter != nil && !filter(ev) {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
