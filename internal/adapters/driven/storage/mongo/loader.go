package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
	"github.com/nandeep-biztech/pim-etl/internal/logger"
)

// LoaderType is the sink type this loader registers as.
const LoaderType = "mongodb"

// Server error codes treated as credential failures.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

// Ensure Loader implements the interfaces.
var (
	_ driven.Loader        = (*Loader)(nil)
	_ driven.StatsProvider = (*Loader)(nil)
)

// Loader writes unified products to a MongoDB collection.
// The underlying client is safe for concurrent use.
type Loader struct {
	client     *mongo.Client
	collection *mongo.Collection
	cfg        domain.DatabaseConfig
}

// NewLoader creates a Loader for cfg. The connection is established lazily;
// use Validate to check the server is reachable.
func NewLoader(cfg domain.DatabaseConfig) (driven.Loader, error) {
	return New(cfg)
}

// New creates a Loader and returns the concrete type.
func New(cfg domain.DatabaseConfig) (*Loader, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("%w: database.uri is empty", domain.ErrConfig)
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("%w: database.database and database.collection are required", domain.ErrConfig)
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: database.uri: %w", domain.ErrConfig, err)
	}

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to mongodb: %w", domain.ErrConfig, err)
	}

	return &Loader{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		cfg:        cfg,
	}, nil
}

// Type returns the sink type.
func (l *Loader) Type() string {
	return LoaderType
}

// Validate pings the primary and ensures the catalogue indexes exist.
func (l *Loader) Validate(ctx context.Context) error {
	if err := l.client.Ping(ctx, readpref.Primary()); err != nil {
		return classifyError("ping", err)
	}

	names, err := l.collection.Indexes().CreateMany(ctx, indexModels())
	if err != nil {
		return classifyError("create indexes", err)
	}
	logger.Debug("mongodb: ensured %d indexes on %s.%s", len(names), l.cfg.Database, l.cfg.Collection)
	return nil
}

// LoadBatch upserts products by product_id in one unordered bulk write.
// Write errors are reported per product; connection failures fail the batch.
func (l *Loader) LoadBatch(ctx context.Context, products []domain.UnifiedProduct) ([]driven.LoadResult, error) {
	results := make([]driven.LoadResult, len(products))
	for i := range products {
		results[i].ExternalID = products[i].ExternalID
	}
	if len(products) == 0 {
		return results, nil
	}

	models, positions := buildModels(products, results)
	if len(models) == 0 {
		return results, nil
	}

	res, err := l.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		if !applyWriteErrors(err, positions, results) {
			return nil, classifyError("bulk write", err)
		}
	}
	if res != nil {
		logger.Debug("mongodb: batch of %d: upserted=%d modified=%d matched=%d",
			len(models), res.UpsertedCount, res.ModifiedCount, res.MatchedCount)
	}
	return results, nil
}

// Stats counts documents per supplier and per status.
func (l *Loader) Stats(ctx context.Context) (domain.SinkStats, error) {
	total, err := l.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return domain.SinkStats{}, classifyError("count documents", err)
	}

	bySupplier, err := l.groupCount(ctx, "$supplier.id")
	if err != nil {
		return domain.SinkStats{}, err
	}
	byStatus, err := l.groupCount(ctx, "$status")
	if err != nil {
		return domain.SinkStats{}, err
	}

	return domain.SinkStats{
		Total:      total,
		BySupplier: bySupplier,
		ByStatus:   byStatus,
	}, nil
}

// Close disconnects the client.
func (l *Loader) Close() error {
	return l.client.Disconnect(context.Background())
}

func (l *Loader) groupCount(ctx context.Context, field string) (map[string]int64, error) {
	cursor, err := l.collection.Aggregate(ctx, groupPipeline(field))
	if err != nil {
		return nil, classifyError("aggregate "+field, err)
	}

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, classifyError("read aggregate "+field, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}

// ==================== Helpers ====================

// buildModels creates one upsert per product with a product ID. Products
// without one are marked failed in results. positions maps each model index
// back to its product index.
func buildModels(products []domain.UnifiedProduct, results []driven.LoadResult) ([]mongo.WriteModel, []int) {
	models := make([]mongo.WriteModel, 0, len(products))
	positions := make([]int, 0, len(products))
	for i := range products {
		if products[i].ExternalID == "" {
			results[i].Err = fmt.Errorf("%w: product_id is empty", domain.ErrValidation)
			continue
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "product_id", Value: products[i].ExternalID}}).
			SetReplacement(products[i]).
			SetUpsert(true))
		positions = append(positions, i)
	}
	return models, positions
}

// applyWriteErrors copies per-operation write errors into results. It returns
// false when err is not a bulk write error or carries no per-operation errors,
// in which case the whole batch failed.
func applyWriteErrors(err error, positions []int, results []driven.LoadResult) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		var ptr *mongo.BulkWriteException
		if !errors.As(err, &ptr) || ptr == nil {
			return false
		}
		bwe = *ptr
	}
	if len(bwe.WriteErrors) == 0 {
		return false
	}

	for _, we := range bwe.WriteErrors {
		if we.Index < 0 || we.Index >= len(positions) {
			continue
		}
		i := positions[we.Index]
		results[i].Err = fmt.Errorf("write %s: code %d: %s", results[i].ExternalID, we.Code, we.Message)
	}
	return true
}

// classifyError maps driver errors onto the run failure taxonomy.
func classifyError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(codeAuthenticationFailed) || se.HasErrorCode(codeUnauthorized)) {
		return fmt.Errorf("%w: mongodb %s: %w", domain.ErrAuth, op, err)
	}

	var sse topology.ServerSelectionError
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.As(err, &sse) {
		return domain.NewTransportError("mongodb "+op, 0, err)
	}

	return fmt.Errorf("mongodb %s: %w", op, err)
}

// indexModels is the catalogue index set.
func indexModels() []mongo.IndexModel {
	asc := func(keys ...string) bson.D {
		d := make(bson.D, 0, len(keys))
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return d
	}

	return []mongo.IndexModel{
		{Keys: asc("product_id"), Options: options.Index().SetUnique(true)},
		{Keys: asc("supplier.id")},
		{Keys: asc("supplier_product_code")},
		{Keys: bson.D{{Key: "name", Value: "text"}}},
		{Keys: asc("categories.name")},
		{Keys: asc("status")},
		{Keys: asc("last_sync")},
		{Keys: asc("variants.sku")},
		{Keys: asc("is_printable")},
		{Keys: asc("minimum_order_quantity")},
		{Keys: asc("supplier.id", "status")},
		{Keys: asc("categories.name", "status")},
		{Keys: asc("is_printable", "status")},
	}
}

func groupPipeline(field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}
