package infrastructure

import (
	"ddj/domain/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// Used when NATS is not configured and in tests.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}

// Flush does nothing
func (n *NoopEventPublisher) Flush() error {
	return nil
}

// Discard does nothing
func (n *NoopEventPublisher) Discard() {
}
