package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

const collectionStyles = "style_presets"

// StyleRepository is the read-only lookup over the style-preset catalog.
// The catalog itself is seeded and maintained out of band.
type StyleRepository struct {
	col *mongo.Collection
}

func NewStyleRepository(db *mongo.Database) *StyleRepository {
	return &StyleRepository{col: db.Collection(collectionStyles)}
}

type styleDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Slug           string             `bson:"slug"`
	Category       string             `bson:"category"`
	PromptTemplate string             `bson:"prompt_template"`
	ThumbnailURL   string             `bson:"thumbnail_url,omitempty"`
	DisplayOrder   int                `bson:"display_order"`
	Active         bool               `bson:"active"`
}

func (d styleDoc) toDomain() domain.StylePreset {
	return domain.StylePreset{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Slug:           d.Slug,
		Category:       d.Category,
		PromptTemplate: d.PromptTemplate,
		ThumbnailURL:   d.ThumbnailURL,
		DisplayOrder:   d.DisplayOrder,
		Active:         d.Active,
	}
}

// FindBySlug returns an active preset by slug.
func (r *StyleRepository) FindBySlug(ctx context.Context, slug string) (*domain.StylePreset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc styleDoc
	err := r.col.FindOne(ctx, bson.M{"slug": slug, "active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStyleNotFound
		}
		return nil, err
	}
	preset := doc.toDomain()
	return &preset, nil
}

// ListActive returns all active presets ordered by display_order.
func (r *StyleRepository) ListActive(ctx context.Context) ([]domain.StylePreset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []styleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.StylePreset, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}
