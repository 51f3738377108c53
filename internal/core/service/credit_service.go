package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/studioshot/backdrop-system/internal/api/metrics"
	"github.com/studioshot/backdrop-system/internal/core/domain"
	"github.com/studioshot/backdrop-system/internal/core/ports"
)

// CreditService is the only writer of credit balances. Every balance change
// happens under the owner's lock and appends a ledger row in the same
// critical section, so the ledger sum always equals the cached balance.
type CreditService struct {
	users  ports.UserRepository
	ledger ports.TransactionRepository
	lock   ports.OwnerLock
	logger zerolog.Logger
}

func NewCreditService(users ports.UserRepository, ledger ports.TransactionRepository, lock ports.OwnerLock, logger zerolog.Logger) *CreditService {
	return &CreditService{users: users, ledger: ledger, lock: lock, logger: logger}
}

// Balance returns the user's current balance after lazily applying trial
// expiry: an elapsed trial window zeroes the balance on observation, with an
// explicit expiry ledger row so the ledger-sum invariant holds.
func (s *CreditService) Balance(ctx context.Context, userID string) (int, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	if user.TrialExpired(time.Now().UTC()) && user.Credits > 0 {
		return 0, s.expireTrial(ctx, userID)
	}
	return user.Credits, nil
}

// expireTrial zeroes the balance of a user whose trial window has elapsed.
// Runs under the owner lock; the state is re-read inside to avoid expiring
// twice when two observations race.
func (s *CreditService) expireTrial(ctx context.Context, userID string) error {
	release, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TrialExpired(time.Now().UTC()) || user.Credits == 0 {
		return nil
	}

	if err := s.applyDelta(ctx, userID, -user.Credits, domain.CreditTransaction{
		UserID:      userID,
		Amount:      -user.Credits,
		Kind:        domain.KindExpiry,
		Description: "Trial credits expired",
	}); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Int("expired", user.Credits).Msg("trial credits expired")
	return nil
}

// GrantTrial credits a freshly registered account with its trial allowance.
func (s *CreditService) GrantTrial(ctx context.Context, userID string, amount int, expiresAt time.Time) error {
	release, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	return s.applyDelta(ctx, userID, amount, domain.CreditTransaction{
		UserID:      userID,
		Amount:      amount,
		Kind:        domain.KindTrial,
		Description: "Trial credits",
	})
}

// Purchase adds purchased credits and returns the new balance.
func (s *CreditService) Purchase(ctx context.Context, userID string, amount int, description string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("purchase amount must be positive")
	}
	if description == "" {
		description = "Credits purchased"
	}

	release, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := s.applyDelta(ctx, userID, amount, domain.CreditTransaction{
		UserID:      userID,
		Amount:      amount,
		Kind:        domain.KindPurchase,
		Description: description,
	}); err != nil {
		return 0, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Credits, nil
}

// SettleGeneration performs the exactly-once debit for a successfully
// finished pipeline. Admission-time approval is advisory; the balance
// re-check here, under the owner lock, is authoritative.
func (s *CreditService) SettleGeneration(ctx context.Context, g *domain.Generation) error {
	release, err := s.lock.Acquire(ctx, g.OwnerID)
	if err != nil {
		return err
	}
	defer release()

	// Idempotency: a generation debit referencing this job means a previous
	// settlement already went through.
	settled, err := s.ledger.ExistsForGeneration(ctx, g.ID)
	if err != nil {
		return err
	}
	if settled {
		metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
		return domain.ErrAlreadySettled
	}

	user, err := s.users.FindByID(ctx, g.OwnerID)
	if err != nil {
		return err
	}
	balance := user.Credits
	if user.TrialExpired(time.Now().UTC()) && balance > 0 {
		if err := s.applyDelta(ctx, g.OwnerID, -balance, domain.CreditTransaction{
			UserID:      g.OwnerID,
			Amount:      -balance,
			Kind:        domain.KindExpiry,
			Description: "Trial credits expired",
		}); err != nil {
			return err
		}
		balance = 0
	}
	if balance < g.Cost {
		metrics.SettlementsTotal.WithLabelValues("insufficient_credits").Inc()
		return domain.ErrInsufficientCredits
	}

	if err := s.applyDelta(ctx, g.OwnerID, -g.Cost, domain.CreditTransaction{
		UserID:       g.OwnerID,
		Amount:       -g.Cost,
		Kind:         domain.KindGeneration,
		Description:  "Background generation",
		GenerationID: g.ID,
	}); err != nil {
		return err
	}

	metrics.SettlementsTotal.WithLabelValues("settled").Inc()
	s.logger.Info().Str("user_id", g.OwnerID).Str("generation_id", g.ID).Int("cost", g.Cost).Msg("generation settled")
	return nil
}

// History returns the user's most recent ledger entries.
func (s *CreditService) History(ctx context.Context, userID string, limit int) ([]domain.CreditTransaction, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.ledger.ListByUser(ctx, userID, limit)
}

// applyDelta moves the cached balance and appends the matching ledger row.
// Callers hold the owner lock. A ledger write failure rolls the balance
// back so the two stay consistent.
func (s *CreditService) applyDelta(ctx context.Context, userID string, delta int, tx domain.CreditTransaction) error {
	if delta < 0 {
		if err := s.users.DecrementCredits(ctx, userID, -delta); err != nil {
			return err
		}
	} else {
		if err := s.users.IncrementCredits(ctx, userID, delta); err != nil {
			return err
		}
	}

	tx.CreatedAt = time.Now().UTC()
	if err := s.ledger.Insert(ctx, &tx); err != nil {
		if delta < 0 {
			if compErr := s.users.IncrementCredits(ctx, userID, -delta); compErr != nil {
				s.logger.Error().Err(compErr).Str("user_id", userID).Msg("failed to roll back balance after ledger write failure")
			}
		} else {
			if compErr := s.users.DecrementCredits(ctx, userID, delta); compErr != nil {
				s.logger.Error().Err(compErr).Str("user_id", userID).Msg("failed to roll back balance after ledger write failure")
			}
		}
		return fmt.Errorf("ledger write: %w", err)
	}

	amount := delta
	if amount < 0 {
		amount = -amount
	}
	metrics.CreditsMovedTotal.WithLabelValues(string(tx.Kind)).Add(float64(amount))
	return nil
}
