// Package workorder provides domain entities and business logic for repair
// order management. It implements the WorkOrder aggregate root with lifecycle
// management, a derived financial ledger, and guarded status transitions.
//
// The package includes:
//   - WorkOrder: The aggregate root owning status, line items, payments, and history
//   - Status: A closed state enum with permissive active-to-active transitions
//   - LineItem: An immutable billed product or service snapshot
//   - StatusHistoryEntry: An append-only record of a committed transition
//   - StatusMetadata: Auxiliary data required by specific target statuses
//   - Ledger: The derived subtotal/tax/total view recomputed on every read
//
// Key business rules:
//   - balance due equals max(0, total - total paid) and is never negative
//   - a balance within one cent counts as settled
//   - closed statuses (delivered, completed, cancelled) accept no transitions
//   - cancellation requires a reason; waiting for parts requires a device
//     location; external repair requires a shop or a work description
//   - the status history only grows, by exactly one entry per transition
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package workorder
