package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"storefront-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_AssignsID(t *testing.T) {
	a := NewMessage(domain.EventOrderPlaced, nil)
	b := NewMessage(domain.EventOrderPlaced, nil)

	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestEncode(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	evt := domain.OrderPlacedEvent{OrderID: "order-1", Total: decimal.NewFromInt(3000)}
	msg := Message{Pattern: domain.EventOrderPlaced, Data: evt, ID: "m-1"}

	pub, err := Encode(msg, now)

	require.NoError(t, err)
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, "m-1", pub.MessageId)
	assert.Equal(t, now, pub.Timestamp)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.Body, &decoded))
	assert.Equal(t, "order.placed", decoded["pattern"])
	assert.Equal(t, "m-1", decoded["id"])
	data := decoded["data"].(map[string]any)
	assert.Equal(t, "order-1", data["orderId"])
	assert.Equal(t, "3000", data["total"])
}

func TestEncode_Unmarshalable(t *testing.T) {
	_, err := Encode(Message{Pattern: "x", Data: make(chan int)}, time.Now())
	assert.Error(t, err)
}
