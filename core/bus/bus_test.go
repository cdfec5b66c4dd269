package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBus(t *testing.T) {
	t.Run("DeliverAndDrainFIFO", func(t *testing.T) {
		b := NewInMemoryBus(nil)
		b.Register("pet-1")

		require.True(t, b.Deliver(Message{Sender: "u1", Recipient: "pet-1", Type: TypeFeed}))
		require.True(t, b.Deliver(Message{Sender: "u1", Recipient: "pet-1", Type: TypePlay}))

		messages := b.Drain("pet-1")
		require.Len(t, messages, 2)
		assert.Equal(t, TypeFeed, messages[0].Type)
		assert.Equal(t, TypePlay, messages[1].Type)

		assert.Empty(t, b.Drain("pet-1"))
	})

	t.Run("UnknownRecipientDropped", func(t *testing.T) {
		b := NewInMemoryBus(nil)
		assert.False(t, b.Deliver(Message{Sender: "u1", Recipient: "ghost", Type: TypeFeed}))
	})

	t.Run("UnregisterDropsQueue", func(t *testing.T) {
		b := NewInMemoryBus(nil)
		b.Register("pet-1")
		b.Deliver(Message{Recipient: "pet-1", Type: TypeCheck})
		b.Unregister("pet-1")
		assert.Empty(t, b.Drain("pet-1"))
		assert.False(t, b.Deliver(Message{Recipient: "pet-1", Type: TypeCheck}))
	})
}

func TestMessageAccessors(t *testing.T) {
	msg := Message{Content: map[string]any{"amount": 2.0, "food_type": "premium", "count": 3}}
	assert.InDelta(t, 2.0, msg.Float("amount", 1.0), 1e-9)
	assert.InDelta(t, 3.0, msg.Float("count", 1.0), 1e-9)
	assert.InDelta(t, 7.0, msg.Float("missing", 7.0), 1e-9)
	assert.Equal(t, "premium", msg.String("food_type", "basic"))
	assert.Equal(t, "basic", msg.String("missing", "basic"))
}
