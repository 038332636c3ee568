// Package services provides domain services that orchestrate business rules
// across the work-order aggregate without naturally belonging inside it.
//
// The package includes:
//   - LedgerReconciler: Computes totals and validates payments against the balance
//   - TransitionGuard: Evaluates proposed status changes into structured decisions
//
// Both services are stateless and side-effect free: they classify and compute,
// and the application layer commits whatever they approve.
package services
