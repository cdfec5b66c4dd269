// Package bus defines the message schema exchanged between users,
// pets and the simulation, and an in-memory bus for in-process
// delivery. Delivery is best-effort: messages to unknown recipients
// are dropped with a warning.
package bus

import (
	"log/slog"
	"sync"
)

// MessageType is the closed set of interaction message kinds.
type MessageType string

const (
	TypeFeed                 MessageType = "feed"
	TypePlay                 MessageType = "play"
	TypePet                  MessageType = "pet"
	TypeTrain                MessageType = "train"
	TypeCheck                MessageType = "check"
	TypePetInteraction       MessageType = "pet_interaction"
	TypeEmoji                MessageType = "emoji"
	TypeStatusUpdate         MessageType = "status_update"
	TypeCollaborationRequest MessageType = "collaboration_request"
)

// Message is one interaction delivered to an agent's inbox.
type Message struct {
	Sender    string         `json:"sender"`
	Recipient string         `json:"recipient"`
	Type      MessageType    `json:"type"`
	Content   map[string]any `json:"content"`
	Timestamp uint64         `json:"timestamp"`
}

// Float reads a numeric content field with a default.
func (m Message) Float(key string, def float64) float64 {
	switch v := m.Content[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// String reads a string content field with a default.
func (m Message) String(key, def string) string {
	if v, ok := m.Content[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Bus delivers messages into per-agent inboxes and drains them once
// per tick.
type Bus interface {
	Deliver(msg Message) bool
	Drain(agentID string) []Message
}

// InMemoryBus is the in-process Bus used by the simulation model.
// Agents must be registered before they can receive.
type InMemoryBus struct {
	mu     sync.Mutex
	queues map[string][]Message
	logger *slog.Logger
}

// NewInMemoryBus builds an empty bus.
func NewInMemoryBus(logger *slog.Logger) *InMemoryBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryBus{
		queues: make(map[string][]Message),
		logger: logger,
	}
}

// Register creates an inbox for an agent.
func (b *InMemoryBus) Register(agentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.queues[agentID]; !ok {
		b.queues[agentID] = nil
	}
}

// Unregister removes an agent's inbox, dropping any queued messages.
func (b *InMemoryBus) Unregister(agentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.queues, agentID)
}

// Deliver appends a message to the recipient's inbox. Messages for
// unregistered recipients are dropped with a warning and false is
// returned.
func (b *InMemoryBus) Deliver(msg Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	queue, ok := b.queues[msg.Recipient]
	if !ok {
		b.logger.Warn("dropping message for unknown recipient",
			"recipient", msg.Recipient, "type", msg.Type, "sender", msg.Sender)
		return false
	}
	b.queues[msg.Recipient] = append(queue, msg)
	return true
}

// Drain removes and returns the recipient's queued messages in FIFO
// order.
func (b *InMemoryBus) Drain(agentID string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	queue := b.queues[agentID]
	if len(queue) == 0 {
		return nil
	}
	b.queues[agentID] = nil
	return queue
}
