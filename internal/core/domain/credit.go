package domain

import (
	"errors"
	"time"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindTrial      TransactionKind = "trial"
	KindGeneration TransactionKind = "generation"
	KindPurchase   TransactionKind = "purchase"
	KindRefund     TransactionKind = "refund"
	KindExpiry     TransactionKind = "expiry"
)

var ErrAlreadySettled = errors.New("generation already settled")

// CreditTransaction is one immutable row in the append-only credit ledger.
// For every user the sum of all amounts equals the cached balance; the
// ledger is the source of truth. Amount is signed; debits are negative.
type CreditTransaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Amount       int             `json:"amount"`
	Kind         TransactionKind `json:"kind"`
	Description  string          `json:"description"`
	GenerationID string          `json:"generation_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
