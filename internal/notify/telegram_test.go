package notify

import (
	"testing"

	"lockwise/internal/config"
	"lockwise/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTelegramNotifierUnconfigured(t *testing.T) {
	logger := zerolog.Nop()

	n, err := NewTelegramNotifier(config.TelegramConfig{}, &logger)
	require.NoError(t, err)
	assert.Nil(t, n)

	// A nil notifier subscribes as a no-op.
	n.SubscribeToBus(events.NewEventBus())
}

func TestHandleEventFormatting(t *testing.T) {
	logger := zerolog.Nop()
	n := &TelegramNotifier{logger: &logger} // no chat ids, send is a no-op

	bus := events.NewEventBus()
	n.SubscribeToBus(bus)

	err := bus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		Reference:   "A1B2C3D4",
		ServiceName: "Lock Installation",
		Time:        "09:00",
		Customer:    "Dana Webb",
	})
	assert.NoError(t, err)
}

func TestHandleEventBadPayload(t *testing.T) {
	logger := zerolog.Nop()
	n := &TelegramNotifier{logger: &logger}

	handler := n.handleEvent("New booking")
	err := handler(&events.Event{Type: events.EventBookingCreated, Payload: []byte("not json")})
	assert.Error(t, err)
}
