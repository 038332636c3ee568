// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: actor resolution,
// per-order serialization, validation, transaction management, persistence,
// and post-commit side-effect dispatch.
package commands

import (
	"context"

	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/kernel"
	"github.com/smartfixosapp/smartfixos/internal/core/domain/model/payment"
	"github.com/smartfixosapp/smartfixos/internal/core/ports"
	"github.com/smartfixosapp/smartfixos/internal/notifications"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// WorkOrderRepoFactory provides access to the work-order repository
	// within a transaction.
	WorkOrderRepoFactory interface {
		WorkOrderRepository() ports.WorkOrderRepository
	}

	// EventRepoFactory provides access to the event repository within a
	// transaction.
	EventRepoFactory interface {
		EventRepository() ports.EventRepository
	}

	// PaymentRepoFactory provides access to the payment repository within a
	// transaction.
	PaymentRepoFactory interface {
		PaymentRepository() ports.PaymentRepository
	}

	// OrderUoW manages transactions for commands that change a work order
	// and its event trail.
	OrderUoW interface {
		TxManager
		WorkOrderRepoFactory
		EventRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// PaymentUoW manages transactions for payment processing, which spans
	// the work order, its payments, and its event trail.
	PaymentUoW interface {
		TxManager
		WorkOrderRepoFactory
		EventRepoFactory
		PaymentRepoFactory
	}

	// PaymentUoWFactory creates new payment unit of work instances.
	PaymentUoWFactory interface {
		Create() PaymentUoW
	}

	// EventUoW manages transactions for commands that touch only the event
	// trail.
	EventUoW interface {
		TxManager
		EventRepoFactory
	}

	// EventUoWFactory creates new event unit of work instances.
	EventUoWFactory interface {
		Create() EventUoW
	}
)

// OrderLocks serializes command execution per order id. Two commands for the
// same order never interleave; commands for different orders run freely.
type OrderLocks interface {
	Lock(orderID kernel.UUID) (unlock func())
}

// SideEffects dispatches best-effort post-commit work. Implementations must
// return promptly and never surface failures to the commit path.
type SideEffects interface {
	StatusChanged(ctx context.Context, order notifications.OrderContext, actor kernel.Actor)
	PaymentReceived(
		ctx context.Context,
		order notifications.OrderContext,
		actor kernel.Actor,
		amount kernel.Money,
		method payment.Method,
		mode payment.Mode,
	)
}
