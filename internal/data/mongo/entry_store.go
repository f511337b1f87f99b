package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/personal-finance-ledger/internal/domain/entry"
)

const (
	// EntriesCollectionName is the name of the entries collection in MongoDB
	EntriesCollectionName = "entries"
	// CountersCollectionName holds the sequences used to assign numeric ids
	CountersCollectionName = "counters"

	entrySequence = "entries"
)

// entryDocument is the stored shape of an entry. Amounts are kept in cents.
type entryDocument struct {
	ID          int64     `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Description string    `bson:"description"`
	AmountCents int64     `bson:"amount_cents"`
	Kind        string    `bson:"kind"`
	Category    string    `bson:"category"`
	OccursOn    time.Time `bson:"occurs_on"`
	CreatedAt   time.Time `bson:"created_at"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// EntryStore implements entry.Store for MongoDB. Multi-entry writes are not transactional.
type EntryStore struct {
	db     *mongo.Database
	logger *slog.Logger
}

var _ entry.Store = (*EntryStore)(nil)

// NewEntryStore creates a new MongoDB entry store
func NewEntryStore(logger *slog.Logger, db *mongo.Database) *EntryStore {
	return &EntryStore{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the indexes backing owner listing
func (s *EntryStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(EntriesCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "occurs_on", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "category", Value: 1}, {Key: "kind", Value: 1}}},
	})
	if err != nil {
		s.logger.Error("Failed to create entry indexes", "error", err)
		return fmt.Errorf("failed to create entry indexes: %w", err)
	}
	return nil
}

// Insert assigns the next id from the counters collection and stores the entry
func (s *EntryStore) Insert(ctx context.Context, e *entry.Entry) (int64, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return 0, err
	}

	doc := toDocument(e)
	doc.ID = id
	if _, err := s.db.Collection(EntriesCollectionName).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, entry.ConflictError{Reason: fmt.Sprintf("entry id %d already exists", id)}
		}
		s.logger.Error("Failed to insert entry", "owner_id", e.OwnerID, "error", err)
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}

	return id, nil
}

// GetByID retrieves an entry by id. Returns nil, nil when it does not exist.
func (s *EntryStore) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	var doc entryDocument
	err := s.db.Collection(EntriesCollectionName).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		s.logger.Error("Failed to get entry", "entry_id", id, "error", err)
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return fromDocument(doc), nil
}

// QueryByOwner returns the owner's entries matching the filter, newest first
func (s *EntryStore) QueryByOwner(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurs_on", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.db.Collection(EntriesCollectionName).Find(ctx, ownerFilter(ownerID, f), opts)
	if err != nil {
		s.logger.Error("Failed to query entries", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		s.logger.Error("Failed to decode entries", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}

	entries := make([]*entry.Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, fromDocument(doc))
	}
	return entries, nil
}

// Update replaces the mutable fields of an entry. Returns NotFoundError if nothing matched.
func (s *EntryStore) Update(ctx context.Context, e *entry.Entry) error {
	update := bson.M{
		"$set": bson.M{
			"description":  e.Description,
			"amount_cents": entry.ToCents(e.Amount),
			"kind":         string(e.Kind),
			"category":     e.Category,
			"occurs_on":    entry.DateOf(e.OccursOn),
		},
	}

	result, err := s.db.Collection(EntriesCollectionName).UpdateOne(ctx, bson.M{"_id": e.ID}, update)
	if err != nil {
		s.logger.Error("Failed to update entry", "entry_id", e.ID, "error", err)
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if result.MatchedCount == 0 {
		return entry.NotFoundError{EntryID: e.ID}
	}
	return nil
}

// Delete removes an entry. Returns NotFoundError if nothing matched.
func (s *EntryStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.Collection(EntriesCollectionName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.logger.Error("Failed to delete entry", "entry_id", id, "error", err)
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if result.DeletedCount == 0 {
		return entry.NotFoundError{EntryID: id}
	}
	return nil
}

// nextID atomically increments the entries sequence, creating it on first use
func (s *EntryStore) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	err := s.db.Collection(CountersCollectionName).
		FindOneAndUpdate(ctx, bson.M{"_id": entrySequence}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).
		Decode(&counter)
	if err != nil {
		s.logger.Error("Failed to allocate entry id", "error", err)
		return 0, fmt.Errorf("failed to allocate entry id: %w", err)
	}
	return counter.Seq, nil
}

// ownerFilter renders the filter as a MongoDB query document
func ownerFilter(ownerID string, f entry.Filter) bson.M {
	filter := bson.M{"owner_id": ownerID}
	if f.Kind != "" {
		filter["kind"] = string(f.Kind)
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.HasDateRange() {
		filter["occurs_on"] = bson.M{
			"$gte": entry.DateOf(f.StartDate),
			"$lte": entry.DateOf(f.EndDate),
		}
	}
	return filter
}

func toDocument(e *entry.Entry) entryDocument {
	return entryDocument{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Description: e.Description,
		AmountCents: entry.ToCents(e.Amount),
		Kind:        string(e.Kind),
		Category:    e.Category,
		OccursOn:    entry.DateOf(e.OccursOn),
		CreatedAt:   e.CreatedAt,
	}
}

func fromDocument(doc entryDocument) *entry.Entry {
	return &entry.Entry{
		ID:          doc.ID,
		OwnerID:     doc.OwnerID,
		Description: doc.Description,
		Amount:      entry.FromCents(doc.AmountCents),
		Kind:        entry.Kind(doc.Kind),
		Category:    doc.Category,
		OccursOn:    entry.DateOf(doc.OccursOn),
		CreatedAt:   doc.CreatedAt.UTC(),
	}
}
