package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/psiu/items-api/internal/model"
	"github.com/psiu/items-api/internal/objectid"
)

var tracer = otel.Tracer("github.com/psiu/items-api/internal/repository")

// CollectionName is the Mongo collection holding item documents.
const CollectionName = "items"

// ListQuery is the repository-level list criteria. Skip and Limit are
// absolute offsets; the use-case layer owns page arithmetic.
type ListQuery struct {
	Status model.Status
	Search string
	Skip   int64
	Limit  int64
}

// ItemRepository persists items in a Mongo collection. It owns the
// two-phase identifier resolution (string _id first, native ObjectID
// fallback) and the tiered search strategy; neither detail leaks past its
// method signatures.
type ItemRepository struct {
	coll *mongo.Collection
}

// NewItemRepository creates an ItemRepository over db's items collection.
func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the indexes the list path depends on: the
// descending createdAt sort index and the full-text index over title.
func (r *ItemRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("create item indexes: %w", err)
	}
	return nil
}

// Insert persists a new item and returns its assigned id. The id is
// generated here and stored as a string inside the document itself; the
// candidate's availability is persisted as-is (creation normalization
// always sets it to true).
func (r *ItemRepository) Insert(ctx context.Context, item *model.Item) (string, error) {
	ctx, span := tracer.Start(ctx, "ItemRepository.Insert",
		trace.WithAttributes(attribute.String("item.title", item.Title)),
	)
	defer span.End()

	id := objectid.New()
	item.ID = objectid.ID(id)

	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}

	span.SetAttributes(attribute.String("item.id", id))
	return id, nil
}

// FindByID looks up a visible item by its display id. The string _id is
// tried first; when that misses and the id is in the 24-hex native format,
// the lookup is retried with the ObjectID encoding. Absence is reported as
// (nil, nil), never as an error, and a malformed id simply means the
// fallback is skipped.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*model.Item, error) {
	ctx, span := tracer.Start(ctx, "ItemRepository.FindByID",
		trace.WithAttributes(attribute.String("item.id", id)),
	)
	defer span.End()

	item, err := r.findVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		oid, perr := objectid.Parse(id)
		if perr != nil {
			// Not in native format; nothing left to try.
			span.SetAttributes(attribute.Bool("item.found", false))
			return nil, nil
		}
		item, err = r.findVisible(ctx, oid)
		if err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Bool("item.found", item != nil))
	return item, nil
}

func (r *ItemRepository) findVisible(ctx context.Context, key any) (*model.Item, error) {
	var item model.Item
	err := r.coll.FindOne(ctx, andFilter(bson.M{"_id": key}, visibleFilter())).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	return &item, nil
}

// Update applies a field patch to the item with the given display id. The
// match runs in two phases, string _id first and ObjectID second, mirroring
// FindByID. After a match the current document is re-fetched (same phase
// order, without the availability filter, so soft-deleted records remain
// patchable) and returned with its id in display form. An unmatched id
// yields (nil, nil); nothing is ever created implicitly.
func (r *ItemRepository) Update(ctx context.Context, id string, patch *model.ItemPatch) (*model.Item, error) {
	ctx, span := tracer.Start(ctx, "ItemRepository.Update",
		trace.WithAttributes(attribute.String("item.id", id)),
	)
	defer span.End()

	set := bson.M{"$set": patch}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, set)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	matched := res.MatchedCount

	var oid primitive.ObjectID
	haveOID := false
	if matched == 0 {
		if o, perr := objectid.Parse(id); perr == nil {
			oid, haveOID = o, true
			res, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, set)
			if err != nil {
				return nil, fmt.Errorf("update item: %w", err)
			}
			matched = res.MatchedCount
		}
	}
	if matched == 0 {
		span.SetAttributes(attribute.Bool("item.found", false))
		return nil, nil
	}

	var item model.Item
	err = r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) && haveOID {
		err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		span.SetAttributes(attribute.Bool("item.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reload updated item: %w", err)
	}

	span.SetAttributes(attribute.Bool("item.found", true))
	return &item, nil
}

// List returns the visible items matching the criteria plus the total count
// of the filtered set before pagination. A search term is applied in two
// tiers: the title full-text index when it yields at least one match, then
// a literal case-insensitive pattern match over title or description. A
// missing text index counts as an empty first tier, not an error. Results
// are ordered newest first.
func (r *ItemRepository) List(ctx context.Context, q ListQuery) ([]*model.Item, int64, error) {
	ctx, span := tracer.Start(ctx, "ItemRepository.List",
		trace.WithAttributes(
			attribute.String("query.status", string(q.Status)),
			attribute.String("query.search", q.Search),
		),
	)
	defer span.End()

	base := baseListClauses(q.Status)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(q.Skip).
		SetLimit(q.Limit)

	filter := andFilter(base...)
	if search := strings.TrimSpace(q.Search); search != "" {
		textFilter := textSearchFilter(base, search)
		total, err := r.coll.CountDocuments(ctx, textFilter)
		if err == nil && total > 0 {
			items, err := r.findAll(ctx, textFilter, opts)
			if err != nil {
				return nil, 0, err
			}
			span.SetAttributes(attribute.Int("item.count", len(items)), attribute.String("search.tier", "text"))
			return items, total, nil
		}
		// Either no text-index hits or the index is unavailable; degrade to
		// the literal pattern tier.
		filter = patternSearchFilter(base, search)
		span.SetAttributes(attribute.String("search.tier", "pattern"))
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	items, err := r.findAll(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("item.count", len(items)))
	return items, total, nil
}

func (r *ItemRepository) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Item, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	var items []*model.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// Count returns the number of visible items. It feeds the items gauge.
func (r *ItemRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, visibleFilter())
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// CountAll returns the total number of documents, soft-deleted ones
// included. Seeding uses it to decide whether the collection is untouched.
func (r *ItemRepository) CountAll(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count all items: %w", err)
	}
	return n, nil
}
