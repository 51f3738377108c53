package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

const collectionTransactions = "credit_transactions"

// TransactionRepository persists the append-only credit ledger. Documents
// are only ever inserted; there is no update or delete path.
type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(collectionTransactions)}
}

type transactionDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	Amount       int                `bson:"amount"`
	Kind         string             `bson:"kind"`
	Description  string             `bson:"description"`
	GenerationID string             `bson:"generation_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d transactionDoc) toDomain() domain.CreditTransaction {
	return domain.CreditTransaction{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Amount:       d.Amount,
		Kind:         domain.TransactionKind(d.Kind),
		Description:  d.Description,
		GenerationID: d.GenerationID,
		CreatedAt:    d.CreatedAt,
	}
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *domain.CreditTransaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := transactionDoc{
		UserID:       tx.UserID,
		Amount:       tx.Amount,
		Kind:         string(tx.Kind),
		Description:  tx.Description,
		GenerationID: tx.GenerationID,
		CreatedAt:    tx.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	tx.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// ExistsForGeneration reports whether a generation debit already references
// the given job id.
func (r *TransactionRepository) ExistsForGeneration(ctx context.Context, generationID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"generation_id": generationID,
		"kind":          string(domain.KindGeneration),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByUser returns the user's most recent ledger entries.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.CreditTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.CreditTransaction, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the ledger collection. The
// partial unique index on generation_id backs the exactly-once settlement
// guarantee at the storage layer.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys: bson.D{{Key: "generation_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"kind": string(domain.KindGeneration)}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
