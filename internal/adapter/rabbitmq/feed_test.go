package rabbitmq

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/interfaces"
)

type fakeChannel struct {
	mu         sync.Mutex
	published  []amqp.Publishing
	exchanges  []string
	deliveries chan amqp.Delivery
	closeChan  chan *amqp.Error
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		deliveries: make(chan amqp.Delivery, 8),
		closeChan:  make(chan *amqp.Error, 1),
	}
}

func (ch *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.exchanges = append(ch.exchanges, name+":"+kind)
	return nil
}

func (ch *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (string, error) {
	return "test-queue", nil
}

func (ch *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return nil
}

func (ch *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.published = append(ch.published, msg)
	return nil
}

func (ch *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return ch.deliveries, nil
}

func (ch *fakeChannel) NotifyClose() <-chan *amqp.Error {
	return ch.closeChan
}

func (ch *fakeChannel) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if !ch.closed {
		ch.closed = true
		close(ch.deliveries)
	}
	return nil
}

type fakeConnection struct {
	channel *fakeChannel
}

func (c *fakeConnection) Channel() (Channel, error) { return c.channel, nil }
func (c *fakeConnection) Close() error              { return nil }
func (c *fakeConnection) IsClosed() bool            { return false }

func testFeed(ch *fakeChannel) *Feed {
	return NewFeed(&fakeConnection{channel: ch}, logger.NewWithWriter("test", io.Discard))
}

func eventBody(t *testing.T, userID, collection string) []byte {
	t.Helper()
	body, err := json.Marshal(interfaces.ChangeEvent{UserID: userID, Collection: collection})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestPublishChange(t *testing.T) {
	ch := newFakeChannel()
	feed := testFeed(ch)

	if err := feed.PublishChange(context.Background(), interfaces.OrdersRef("u1")); err != nil {
		t.Fatalf("PublishChange returned error: %v", err)
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if len(ch.exchanges) != 1 || ch.exchanges[0] != "collection_events:fanout" {
		t.Errorf("unexpected exchange declarations: %+v", ch.exchanges)
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(ch.published))
	}

	var event interfaces.ChangeEvent
	if err := json.Unmarshal(ch.published[0].Body, &event); err != nil {
		t.Fatalf("event body is not valid JSON: %v", err)
	}
	if event.UserID != "u1" || event.Collection != "orders" {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestSubscribeChangesFilters(t *testing.T) {
	ch := newFakeChannel()
	feed := testFeed(ch)

	events, cancel, err := feed.SubscribeChanges(context.Background(), interfaces.OrdersRef("u1"))
	if err != nil {
		t.Fatalf("SubscribeChanges returned error: %v", err)
	}

	// Mismatched user and collection first, then the matching event.
	ch.deliveries <- amqp.Delivery{Body: eventBody(t, "someone-else", "orders")}
	ch.deliveries <- amqp.Delivery{Body: eventBody(t, "u1", "menu")}
	ch.deliveries <- amqp.Delivery{Body: []byte("not json")}
	ch.deliveries <- amqp.Delivery{Body: eventBody(t, "u1", "orders")}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the matching event")
	}

	cancel()
	select {
	case _, open := <-events:
		if open {
			t.Fatal("expected event channel to close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestSubscribeChangesCoalesces(t *testing.T) {
	ch := newFakeChannel()
	feed := testFeed(ch)

	events, cancel, err := feed.SubscribeChanges(context.Background(), interfaces.OrdersRef("u1"))
	if err != nil {
		t.Fatalf("SubscribeChanges returned error: %v", err)
	}
	defer cancel()

	for i := 0; i < 5; i++ {
		ch.deliveries <- amqp.Delivery{Body: eventBody(t, "u1", "orders")}
	}

	// One tick covers the burst; the channel holds at most one pending tick.
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick")
	}
	if len(events) > 1 {
		t.Errorf("expected at most one pending tick, got %d", len(events))
	}
}
