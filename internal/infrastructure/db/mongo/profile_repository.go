package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/userprops/profile-service/internal/core/domain"
)

const DefaultProfileCollection = "users"

// ProfileRepository implements ports.ProfileRepository on a single collection
// keyed by domain.ProfileKeyField.
type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database, collection string) *ProfileRepository {
	if collection == "" {
		collection = DefaultProfileCollection
	}
	return &ProfileRepository{col: db.Collection(collection)}
}

// FindByUserID loads the whole profile document for userID.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (domain.ProfileDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var raw bson.M
	err := r.col.FindOne(ctx, bson.M{domain.ProfileKeyField: userID}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	doc := make(domain.ProfileDocument, len(raw))
	for k, v := range raw {
		doc[k] = plain(v)
	}
	return doc, nil
}

// SetField upserts the document for userID and $sets exactly one field. The
// equality filter makes the driver copy the key field into a new document.
func (r *ProfileRepository) SetField(ctx context.Context, userID, field string, value any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{domain.ProfileKeyField: userID}
	update := bson.M{"$set": bson.M{field: value}}

	if _, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("set profile field: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique index backing the upsert key.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: domain.ProfileKeyField, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// plain converts driver container types into map[string]any / []any so that
// values leave the repository as ordinary Go data.
func plain(v any) any {
	switch t := v.(type) {
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}
