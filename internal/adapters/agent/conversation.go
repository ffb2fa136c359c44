package agent

import (
	"slices"
	"sync"
)

// Conversation is an append-only message log. Entries are never reordered or
// pruned; retention is left to whoever renders the log.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversation creates an empty log.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds m to the end of the log.
func (c *Conversation) Append(m Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
}

// Messages returns a copy of the log in append order.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.messages)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
