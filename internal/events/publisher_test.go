package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeSequencer struct {
	next int64
	keys []string
	err  error
}

func (f *fakeSequencer) NextSequence(_ context.Context, key string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.keys = append(f.keys, key)
	f.next++
	return f.next, nil
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:            "order-1",
		SessionID:     "session-1",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items: []order.Item{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99"), SelectedSize: "M"},
		},
		TotalAmount: decimal.RequireFromString("19.98"),
		Status:      order.StatusPending,
	}
}

func TestPublishOrderPlaced(t *testing.T) {
	ch := &fakeChannel{}
	seq := &fakeSequencer{next: 4}
	p, err := newPublisher(ch, seq, PublisherOptions{})
	require.NoError(t, err)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	err = p.PublishOrderPlaced(context.Background(), EventMeta{CorrelationID: "corr-1", PartitionKey: "session-1"}, sampleOrder())
	require.NoError(t, err)

	require.Equal(t, []string{"ecommerce.events:topic"}, ch.declared)
	require.Len(t, ch.published, 1)
	pub := ch.published[0]
	require.Equal(t, EventsExchange, pub.exchange)
	require.Equal(t, OrderPlacedRoutingKey, pub.key)
	require.Equal(t, "application/json", pub.msg.ContentType)
	require.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	require.Equal(t, []string{"session-1"}, seq.keys)

	env, err := ParseEnvelope(pub.msg.Body)
	require.NoError(t, err)
	require.NoError(t, env.Validate(EventTypeOrderPlaced, OrderPlacedEventVersion))
	require.Equal(t, pub.msg.MessageId, env.EventID)
	require.Equal(t, int64(5), env.Sequence)
	require.Equal(t, "corr-1", env.CorrelationID)
	require.Equal(t, DefaultProducer, env.Producer)
	require.Equal(t, OrderPlacedSchemaPath, env.Schema)
	require.True(t, env.OccurredAt.Equal(now))

	var payload OrderPlacedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	require.Equal(t, "order-1", payload.OrderID)
	require.True(t, payload.TotalAmount.Equal(decimal.RequireFromString("19.98")))
	require.Len(t, payload.Items, 1)
	require.Equal(t, "M", payload.Items[0].SelectedSize)
}

func TestPublishOrderPlacedDefaultsPartitionKey(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, nil, PublisherOptions{Producer: "storefront-test"})
	require.NoError(t, err)

	require.NoError(t, p.PublishOrderPlaced(context.Background(), EventMeta{}, sampleOrder()))

	env, err := ParseEnvelope(ch.published[0].msg.Body)
	require.NoError(t, err)
	require.Equal(t, "order-1", env.PartitionKey)
	require.Zero(t, env.Sequence)
	require.Equal(t, "storefront-test", env.Producer)
}

func TestPublishOrderPlacedErrors(t *testing.T) {
	t.Run("sequence failure", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := newPublisher(ch, &fakeSequencer{err: errors.New("db down")}, PublisherOptions{})
		require.NoError(t, err)

		err = p.PublishOrderPlaced(context.Background(), EventMeta{}, sampleOrder())
		require.Error(t, err)
		require.Empty(t, ch.published)
	})

	t.Run("broker failure", func(t *testing.T) {
		boom := errors.New("channel closed")
		p, err := newPublisher(&fakeChannel{publishErr: boom}, nil, PublisherOptions{})
		require.NoError(t, err)

		require.ErrorIs(t, p.PublishOrderPlaced(context.Background(), EventMeta{}, sampleOrder()), boom)
	})
}

func TestEnvelopeValidate(t *testing.T) {
	valid := EventEnvelope{
		EventName:    EventTypeOrderPlaced,
		EventVersion: 1,
		EventID:      "e1",
		PartitionKey: "k",
		Payload:      json.RawMessage(`{}`),
	}
	require.NoError(t, valid.Validate(EventTypeOrderPlaced, 1))

	tests := map[string]func(*EventEnvelope){
		"wrong name":      func(e *EventEnvelope) { e.EventName = "WrongName" },
		"wrong version":   func(e *EventEnvelope) { e.EventVersion = 2 },
		"no partition":    func(e *EventEnvelope) { e.PartitionKey = "" },
		"no event id":     func(e *EventEnvelope) { e.EventID = "" },
		"missing payload": func(e *EventEnvelope) { e.Payload = nil },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			env := valid
			mutate(&env)
			require.Error(t, env.Validate(EventTypeOrderPlaced, 1))
		})
	}
}

func TestSequenceRepository(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO event_sequences`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(3)))

	repo := NewSequenceRepository(mock)
	seq, err := repo.NextSequence(context.Background(), "session-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), seq)

	_, err = repo.NextSequence(context.Background(), "")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCorrelationIDContext(t *testing.T) {
	require.Empty(t, CorrelationIDFrom(context.Background()))

	ctx := WithCorrelationID(context.Background(), "corr-9")
	require.Equal(t, "corr-9", CorrelationIDFrom(ctx))
}
