package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

const collectionClients = "clients"

// ClientRepository is the document store of client records. It implements
// ports.ClientStore.
type ClientRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients), now: time.Now}
}

func (r *ClientRepository) Get(ctx context.Context, id string) (rec *domain.ClientRecord, err error) {
	ctx, span := startSpan(ctx, collectionClients, "find_one")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc domain.ClientRecord
	if err = r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &doc, nil
}

// Create inserts rec unless a record with the same id exists.
func (r *ClientRepository) Create(ctx context.Context, rec *domain.ClientRecord) (err error) {
	ctx, span := startSpan(ctx, collectionClients, "insert_one")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err = r.col.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrClientExists
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// Set replaces the whole record, creating it if needed.
func (r *ClientRepository) Set(ctx context.Context, rec *domain.ClientRecord) (err error) {
	ctx, span := startSpan(ctx, collectionClients, "replace_one")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace client: %w", err)
	}
	return nil
}

// ReplaceData swaps the data field in a single update. Last writer wins.
func (r *ClientRepository) ReplaceData(ctx context.Context, id string, data domain.ClientData) (err error) {
	ctx, span := startSpan(ctx, collectionClients, "update_one")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"data": data, "updated_at": r.now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update client data: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, collectionClients, "delete_one")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

// ListAll returns every record, newest first.
func (r *ClientRepository) ListAll(ctx context.Context) (recs []*domain.ClientRecord, err error) {
	ctx, span := startSpan(ctx, collectionClients, "find")
	defer func() { endSpan(span, err) }()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer cur.Close(ctx)

	recs = []*domain.ClientRecord{}
	if err = cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	return recs, nil
}

func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	})
	return err
}
