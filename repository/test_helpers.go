package repository

import (
	"ddj/database"
	"ddj/domain/interfaces"
	"ddj/infrastructure"
)

// NewTestUnitOfWorkFactory creates a unit of work factory whose
// publishers are no-ops
func NewTestUnitOfWorkFactory(db *database.DB) interfaces.UnitOfWorkFactory {
	return NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewNoopEventPublisher()
	})
}
