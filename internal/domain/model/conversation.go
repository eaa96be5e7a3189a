package model

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RequestStatus is the single authoritative state of the conversation's
// in-flight request slot.
type RequestStatus string

const (
	RequestIdle      RequestStatus = "idle"
	RequestPending   RequestStatus = "pending"
	RequestSucceeded RequestStatus = "succeeded"
	RequestFailed    RequestStatus = "failed"
)

// Message is one exchanged chat message. Values are never mutated once
// appended; IDs are monotonic ULIDs so they sort chronologically.
type Message struct {
	ID        string
	Role      Role
	Text      string
	CreatedAt time.Time
}

func NewMessage(role Role, text string) Message {
	now := time.Now()
	return Message{
		ID:        ulid.Make().String(),
		Role:      role,
		Text:      text,
		CreatedAt: now,
	}
}

// Conversation is the append-only message log of one chat widget instance.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
	status   RequestStatus
}

func NewConversation() *Conversation {
	return &Conversation{
		messages: make([]Message, 0, 8),
		status:   RequestIdle,
	}
}

// Append adds msg at the end. Earlier entries are never touched.
func (c *Conversation) Append(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// TryBegin appends a user message and marks the slot pending in one step.
// It returns false, changing nothing, when a request is already pending.
func (c *Conversation) TryBegin(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == RequestPending {
		return false
	}
	c.messages = append(c.messages, msg)
	c.status = RequestPending
	return true
}

// SetPending toggles the pending flag. Clearing it resets to idle.
func (c *Conversation) SetPending(pending bool) {
	if pending {
		c.SetStatus(RequestPending)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == RequestPending {
		c.status = RequestIdle
	}
}

func (c *Conversation) SetStatus(s RequestStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

func (c *Conversation) Status() RequestStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Conversation) Pending() bool { return c.Status() == RequestPending }

// Messages returns a copy of the log in insertion order.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message, if any.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}
