package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibleTo(t *testing.T) {
	plain := &Message{SenderID: "a", ReceiverID: "b"}
	assert.True(t, plain.VisibleTo("a"))
	assert.True(t, plain.VisibleTo("b"))

	deny := &Message{SenderID: "a", ReceiverID: "b", System: true, OnlyForSender: true}
	assert.True(t, deny.VisibleTo("a"))
	assert.False(t, deny.VisibleTo("b"))

	// system without the sender-only flag stays visible to both sides
	broadcastSys := &Message{SenderID: "a", ReceiverID: "b", System: true}
	assert.True(t, broadcastSys.VisibleTo("b"))
}

func TestCounterpartOf(t *testing.T) {
	m := &Message{SenderID: "a", ReceiverID: "b"}
	assert.Equal(t, "b", m.CounterpartOf("a"))
	assert.Equal(t, "a", m.CounterpartOf("b"))
}
