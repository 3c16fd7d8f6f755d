package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/interfaces"
)

const changesExchange = "collection_events"

// Feed fans collection-change events out over a fanout exchange. Every
// subscription gets its own exclusive auto-delete queue, so each subscriber
// sees every event and nothing persists past its lifetime.
type Feed struct {
	conn   Connection
	logger logger.Logger
}

func NewFeed(conn Connection, lgr logger.Logger) *Feed {
	return &Feed{conn: conn, logger: lgr}
}

func (f *Feed) PublishChange(ctx context.Context, ref interfaces.CollectionRef) error {
	ch, err := f.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(changesExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(interfaces.ChangeEvent{
		UserID:     ref.UserID,
		Collection: ref.Collection,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = ch.Publish(changesExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// SubscribeChanges delivers one tick per burst of events matching ref. Ticks
// are coalesced: a subscriber refetching once always sees the net effect of
// every event that fired meanwhile.
func (f *Feed) SubscribeChanges(ctx context.Context, ref interfaces.CollectionRef) (<-chan struct{}, func(), error) {
	ch, err := f.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(changesExchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, "", changesExchange, false, nil); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(queue, "", true, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	events := make(chan struct{}, 1)
	closeChan := ch.NotifyClose()

	go func() {
		defer close(events)

		for {
			select {
			case <-ctx.Done():
				ch.Close()
				return

			case amqpErr := <-closeChan:
				if amqpErr != nil {
					f.logger.Error("feed_channel_closed", "Change feed dropped; subscription ends", map[string]interface{}{
						"user_id":    ref.UserID,
						"collection": ref.Collection,
					}, amqpErr)
				}
				return

			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var event interfaces.ChangeEvent
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					f.logger.Error("feed_event_malformed", "Dropping undecodable change event", nil, err)
					continue
				}

				if event.UserID != ref.UserID || event.Collection != ref.Collection {
					continue
				}

				// Coalesce: one pending tick is enough, the refetch
				// picks up everything since.
				select {
				case events <- struct{}{}:
				default:
				}
			}
		}
	}()

	cancel := func() { ch.Close() }
	return events, cancel, nil
}
