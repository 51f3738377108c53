package ports

import (
	"context"
	"time"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// UserRepository defines persistence for user accounts and their cached
// credit balance. Balance writes are conditional so the balance can never
// go negative regardless of interleaving.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// DecrementCredits subtracts amount from the balance only when the
	// current balance is at least amount; otherwise it returns
	// domain.ErrInsufficientCredits without modifying anything.
	DecrementCredits(ctx context.Context, id string, amount int) error
	// IncrementCredits adds amount to the balance.
	IncrementCredits(ctx context.Context, id string, amount int) error
}

// TransactionRepository is the append-only credit ledger. Rows are never
// updated or deleted.
type TransactionRepository interface {
	Insert(ctx context.Context, tx *domain.CreditTransaction) error
	// ExistsForGeneration reports whether a generation-kind entry already
	// references the given job (the settlement idempotency check).
	ExistsForGeneration(ctx context.Context, generationID string) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.CreditTransaction, error)
}

// OwnerLock serializes balance-mutating operations for one owner across
// concurrently running jobs (and across instances).
type OwnerLock interface {
	// Acquire blocks until the owner's lock is held or ctx expires. The
	// returned release function is safe to call exactly once.
	Acquire(ctx context.Context, ownerID string) (release func(), err error)
}

// CreditService is the only component permitted to mutate a user's credit
// balance. Every mutation appends a ledger row in the same critical section.
type CreditService interface {
	// Balance returns the owner's current balance after lazily applying
	// trial expiry.
	Balance(ctx context.Context, userID string) (int, error)
	// GrantTrial credits a fresh account with its trial allowance.
	GrantTrial(ctx context.Context, userID string, amount int, expiresAt time.Time) error
	// Purchase adds purchased credits and returns the new balance.
	Purchase(ctx context.Context, userID string, amount int, description string) (int, error)
	// SettleGeneration performs the exactly-once debit for a successfully
	// finished generation: re-checks the balance under the owner lock,
	// decrements it, and appends the generation ledger row. Returns
	// domain.ErrInsufficientCredits when the authoritative re-check fails
	// and domain.ErrAlreadySettled on a duplicate attempt.
	SettleGeneration(ctx context.Context, g *domain.Generation) error
	// History returns the owner's most recent ledger entries.
	History(ctx context.Context, userID string, limit int) ([]domain.CreditTransaction, error)
}
