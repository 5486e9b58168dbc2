package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvent struct{ kind string }

func (e fakeEvent) Kind() string { return e.kind }

func TestPublishToSubscribers(t *testing.T) {
	bus := New()

	var a, b int
	require.NoError(t, bus.Subscribe("x", func(Event) { a++ }))
	require.NoError(t, bus.Subscribe("x", func(Event) { b++ }))

	bus.Publish(fakeEvent{"x"})
	bus.Publish(fakeEvent{"x"})

	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
}

func TestPublishWithoutSubscriberIsNoop(t *testing.T) {
	bus := New()
	bus.Publish(fakeEvent{"nobody"})
	bus.Publish(nil)
}

func TestSubscribeValidation(t *testing.T) {
	bus := New()
	assert.Error(t, bus.Subscribe("", func(Event) {}))
	assert.Error(t, bus.Subscribe("x", nil))
}

func TestHandlerPanicDoesNotStopDelivery(t *testing.T) {
	bus := New()

	var delivered bool
	require.NoError(t, bus.Subscribe("x", func(Event) { panic("boom") }))
	require.NoError(t, bus.Subscribe("x", func(Event) { delivered = true }))

	bus.Publish(fakeEvent{"x"})
	assert.True(t, delivered)
}
