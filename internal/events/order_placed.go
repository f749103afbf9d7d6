package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type OrderPlacedPayload struct {
	OrderID       string            `json:"orderId"`
	SessionID     string            `json:"sessionId,omitempty"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	Items         []OrderPlacedItem `json:"items"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
}

func orderPlacedPayload(o *order.Order, occurredAt time.Time) OrderPlacedPayload {
	payload := OrderPlacedPayload{
		OrderID:       o.ID,
		SessionID:     o.SessionID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         make([]OrderPlacedItem, 0, len(o.Items)),
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		Timestamp:     occurredAt,
	}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			SelectedSize:  it.SelectedSize,
			SelectedColor: it.SelectedColor,
		})
	}
	return payload
}

func newOrderPlacedEvent(meta EventMeta, seq int64, producer string, o *order.Order, occurredAt time.Time) (EventEnvelope, error) {
	body, err := json.Marshal(orderPlacedPayload(o, occurredAt))
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("marshal OrderPlaced payload: %w", err)
	}

	partitionKey := meta.PartitionKey
	if partitionKey == "" {
		partitionKey = o.ID
	}

	return EventEnvelope{
		EventName:     EventTypeOrderPlaced,
		EventVersion:  OrderPlacedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      seq,
		OccurredAt:    occurredAt,
		Schema:        OrderPlacedSchemaPath,
		Payload:       body,
	}, nil
}
