package events

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadModelIsIdempotentAndOrderTolerant(t *testing.T) {
	rm := NewActivityReadModel()
	ctx := context.Background()

	cancelled := &BookingCancelled{Header: NewEventHeader(), BookingID: "booking_000001", PNR: "123-4567890", RefundAmount: 4000}
	confirmed := &BookingConfirmed{Header: NewEventHeader(), BookingID: "booking_000001", PNR: "123-4567890", TotalFare: 5000, Seats: []string{"B1-1", "B1-2"}}

	require.NoError(t, rm.OnBookingCancelled(ctx, cancelled))
	require.NoError(t, rm.OnBookingConfirmed(ctx, confirmed))
	require.NoError(t, rm.OnBookingConfirmed(ctx, confirmed))

	a, ok := rm.Get("booking_000001")
	require.True(t, ok)
	assert.Equal(t, "Cancelled", a.Status)
	assert.Equal(t, 4000.0, a.RefundAmount)
	assert.Equal(t, 5000.0, a.TotalFare)
	assert.Equal(t, []string{"B1-1", "B1-2"}, a.Seats)
	assert.NotNil(t, a.ConfirmedAt)
	assert.NotNil(t, a.CancelledAt)

	assert.Len(t, rm.All("Cancelled"), 1)
	assert.Empty(t, rm.All("Confirmed"))
}

func TestEventsReachReadModel(t *testing.T) {
	logger := NewWatermillLogger(logrus.NewEntry(logrus.StandardLogger()))
	pubSub := NewPubSub(logger)
	defer pubSub.Close()

	bus, err := NewEventBus(pubSub, logger)
	require.NoError(t, err)
	readModel := NewActivityReadModel()
	router, err := NewRouter(pubSub, readModel, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, router.Run(ctx))
	}()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	publisher := NewPublisher(bus)
	require.NoError(t, publisher.Publish(ctx, &BookingConfirmed{
		Header:      NewEventHeader(),
		BookingID:   "booking_123456",
		PNR:         "111-2223334",
		UserID:      "user_000001",
		TrainNumber: "12951",
		ClassCode:   "3A",
		Seats:       []string{"B3-17"},
		TotalFare:   2500,
	}))
	require.NoError(t, publisher.Publish(ctx, &BookingCancelled{
		Header:       NewEventHeader(),
		BookingID:    "booking_123456",
		PNR:          "111-2223334",
		UserID:       "user_000001",
		TrainNumber:  "12951",
		ClassCode:    "3A",
		RefundAmount: 2000,
	}))

	assert.EventuallyWithT(t, func(c *assert.CollectT) {
		a, ok := readModel.Get("booking_123456")
		if !assert.True(c, ok) {
			return
		}
		assert.Equal(c, "Cancelled", a.Status)
		assert.NotNil(c, a.ConfirmedAt)
	}, 5*time.Second, 20*time.Millisecond)
}
