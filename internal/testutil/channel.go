package testutil

import (
	"context"
	"sync"
)

// SentMessage is one message captured by RecordingChannel.
type SentMessage struct {
	OwnerID string
	Text    string
}

// RecordingChannel captures sends. FailFor makes sends to the listed owners
// fail with Err.
type RecordingChannel struct {
	mu      sync.Mutex
	Sent    []SentMessage
	FailFor map[string]bool
	Err     error
}

func (c *RecordingChannel) Send(_ context.Context, ownerID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailFor[ownerID] {
		return c.Err
	}
	c.Sent = append(c.Sent, SentMessage{OwnerID: ownerID, Text: text})
	return nil
}

// Messages returns a copy of everything sent so far.
func (c *RecordingChannel) Messages() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.Sent...)
}
