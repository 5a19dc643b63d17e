package infrastructure

import (
	log "github.com/sirupsen/logrus"

	"ddj/domain/events"
	"ddj/domain/interfaces"
)

// TransactionalPublisher holds events until Flush, keeping event
// delivery consistent with the database transaction that produced
// them: flushed after commit, discarded on rollback.
type TransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

// NewTransactionalPublisher creates a new transactional publisher
func NewTransactionalPublisher(realPublisher interfaces.EventPublisher) interfaces.TransactionalEventPublisher {
	return &TransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without immediately publishing
func (p *TransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events.
// This should be called after successful database transaction commit.
func (p *TransactionalPublisher) Flush() error {
	for _, event := range p.pending {
		if err := p.realPublisher.Publish(event); err != nil {
			// Keep going; one failed event should not block the rest
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	p.pending = p.pending[:0]
	return nil
}

// Discard clears all pending events without publishing them.
// This should be called on database transaction rollback.
func (p *TransactionalPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("discardedEventCount", len(p.pending)).
			Debug("Discarding pending events")
	}
	p.pending = p.pending[:0]
}
