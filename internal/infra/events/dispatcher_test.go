package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDispatcher_FansOutToEverySink(t *testing.T) {
	rabbit := new(mocks.MockPublisher)
	webhook := new(mocks.MockPublisher)
	evt := domain.OrderPlacedEvent{OrderID: "order-1"}

	rabbit.On("Publish", mock.Anything, domain.EventOrderPlaced, evt).Return(errors.New("broker down"))
	webhook.On("Publish", mock.Anything, domain.EventOrderPlaced, evt).Return(nil)

	d := NewDispatcher(time.Second)
	d.Register("rabbitmq", rabbit)
	d.Register("webhook", webhook)
	d.Dispatch(domain.EventOrderPlaced, evt)
	d.Wait()

	assert.Equal(t, 2, d.Len())
	rabbit.AssertExpectations(t)
	webhook.AssertExpectations(t)
}

func TestDispatcher_AppliesTimeout(t *testing.T) {
	slow := new(mocks.MockPublisher)
	var deadline bool
	slow.On("Publish", mock.Anything, "order.placed", nil).Return(nil).Run(func(args mock.Arguments) {
		_, deadline = args.Get(0).(context.Context).Deadline()
	})

	d := NewDispatcher(50 * time.Millisecond)
	d.Register("slow", slow)
	d.Dispatch("order.placed", nil)
	d.Wait()

	assert.True(t, deadline)
}

func TestDispatcher_NoSinks(t *testing.T) {
	d := NewDispatcher(time.Second)
	d.Dispatch("order.placed", nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, d.Shutdown(ctx))
}
