package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control over the work-order, event, and payment
// repositories. Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// WorkOrderRepository returns a WorkOrderRepository bound to the current
	// transaction. Repository will use the transaction started by Begin().
	WorkOrderRepository() WorkOrderRepository

	// EventRepository returns an EventRepository bound to the current
	// transaction. Repository will use the transaction started by Begin().
	EventRepository() EventRepository

	// PaymentRepository returns a PaymentRepository bound to the current
	// transaction. Repository will use the transaction started by Begin().
	PaymentRepository() PaymentRepository
}
