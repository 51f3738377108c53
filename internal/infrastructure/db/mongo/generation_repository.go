package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

const collectionGenerations = "generations"

type GenerationRepository struct {
	col *mongo.Collection
}

func NewGenerationRepository(db *mongo.Database) *GenerationRepository {
	return &GenerationRepository{col: db.Collection(collectionGenerations)}
}

// Create inserts a new generation document.
func (r *GenerationRepository) Create(ctx context.Context, g *domain.Generation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, g)
	return err
}

// FindByIDForOwner retrieves a generation by id scoped to its owner. Jobs
// belonging to other users look exactly like missing ones.
func (r *GenerationRepository) FindByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Generation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var g domain.Generation
	err := r.col.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGenerationNotFound
		}
		return nil, err
	}
	return &g, nil
}

// MarkCompleted atomically transitions processing → completed and stores the
// final artifact. The status filter makes terminal states immutable.
func (r *GenerationRepository) MarkCompleted(ctx context.Context, id string, final domain.ArtifactRef) error {
	return r.terminal(ctx, id, bson.M{
		"status":      string(domain.StatusCompleted),
		"final_image": final,
	})
}

// MarkFailed atomically transitions processing → failed with the reason.
func (r *GenerationRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.terminal(ctx, id, bson.M{
		"status": string(domain.StatusFailed),
		"error":  reason,
	})
}

func (r *GenerationRepository) terminal(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(domain.StatusProcessing)},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// Delete removes a generation owned by ownerID.
func (r *GenerationRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrGenerationNotFound
	}
	return nil
}

// ListByOwner returns one page of the owner's generations, newest first.
func (r *GenerationRepository) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]*domain.Generation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"owner_id": ownerID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var items []*domain.Generation
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// EnsureIndexes creates necessary indexes on the generations collection.
func (r *GenerationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
