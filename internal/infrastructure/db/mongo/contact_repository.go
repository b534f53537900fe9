package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

const collectionContacts = "contact_requests"

// ContactRepository implements ports.ContactRepository.
type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{col: db.Collection(collectionContacts)}
}

func (r *ContactRepository) Insert(ctx context.Context, req *domain.ContactRequest) (err error) {
	ctx, span := startSpan(ctx, collectionContacts, "insert_one")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err = r.col.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("insert contact request: %w", err)
	}
	return nil
}

func (r *ContactRepository) MarkNotified(ctx context.Context, id string, at time.Time) (err error) {
	ctx, span := startSpan(ctx, collectionContacts, "update_one")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err = r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"notified_at": at}}); err != nil {
		return fmt.Errorf("mark contact request notified: %w", err)
	}
	return nil
}

// ListByClient returns a client's requests, newest first.
func (r *ContactRepository) ListByClient(ctx context.Context, clientID string) (reqs []*domain.ContactRequest, err error) {
	ctx, span := startSpan(ctx, collectionContacts, "find")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"client_id": clientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list contact requests: %w", err)
	}
	defer cur.Close(ctx)

	reqs = []*domain.ContactRequest{}
	if err = cur.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("decode contact requests: %w", err)
	}
	return reqs, nil
}

func (r *ContactRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
