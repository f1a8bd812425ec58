package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/db"
	"github.com/leaf-cloud/straindex/internal/domain"
)

// DefaultBatchSize bounds the number of points written per pipelined call.
const DefaultBatchSize = 10

// store is the consumer interface for the gateway (ISP).
//
//nolint:interfacebloat // gateway needs hash + index + search operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	ListIndexes(ctx context.Context) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Gateway translates generic (collection, vector, filter) requests into the
// store's upsert/search/scroll calls. It keeps a registry of known
// collections and ensures each exists once at startup; pre-existing
// collections are never reconciled against their descriptor.
type Gateway struct {
	store       store
	logger      *zap.Logger
	batchSize   int
	hnswM       int
	hnswEF      int
	descriptors map[string]domain.CollectionDescriptor
	available   bool
}

// New creates a gateway. Collections must be registered before Init.
func New(s store, logger *zap.Logger) *Gateway {
	return &Gateway{
		store:       s,
		logger:      logger,
		batchSize:   DefaultBatchSize,
		descriptors: make(map[string]domain.CollectionDescriptor),
	}
}

// WithBatchSize configures the batch upsert chunk size.
func (g *Gateway) WithBatchSize(n int) *Gateway {
	if n > 0 {
		g.batchSize = n
	}
	return g
}

// WithHNSW sets the build parameters for indexes created by Init.
// Zero values leave the store's defaults in place.
func (g *Gateway) WithHNSW(m, efConstruct int) *Gateway {
	g.hnswM = m
	g.hnswEF = efConstruct
	return g
}

// Register adds a collection descriptor to the registry.
func (g *Gateway) Register(desc domain.CollectionDescriptor) error {
	if desc.Name == "" || !db.IsValidIdentifier(desc.Name) {
		return fmt.Errorf("invalid collection name %q: %w", desc.Name, domain.ErrValidation)
	}
	if desc.Dimensions <= 0 {
		return fmt.Errorf("collection %s requires positive dimensions: %w", desc.Name, domain.ErrValidation)
	}
	if _, ok := g.descriptors[desc.Name]; ok {
		return fmt.Errorf("collection %s: %w", desc.Name, domain.ErrAlreadyExists)
	}
	g.descriptors[desc.Name] = desc
	return nil
}

// Init checks the live index list once and creates any absent collection
// with its declared vector size and distance. On success the gateway
// becomes available; on failure every later call returns
// domain.ErrStoreUnavailable — there is no retry or reconnection loop.
func (g *Gateway) Init(ctx context.Context) error {
	existing, err := g.store.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		known[name] = struct{}{}
	}

	for name, desc := range g.descriptors {
		idxName := indexName(name)
		if _, ok := known[idxName]; ok {
			continue
		}
		def := buildIndexDefinition(desc, g.hnswM, g.hnswEF)
		if err := g.store.CreateIndex(ctx, def); err != nil {
			// Raced with another instance: the collection is there, move on.
			if err == db.ErrIndexExists {
				continue
			}
			return fmt.Errorf("create collection %s: %w", name, err)
		}
		g.logger.Info("Created vector collection",
			zap.String("collection", name),
			zap.Int("dimensions", desc.Dimensions),
			zap.String("distance", string(desc.Distance)),
		)
	}

	g.available = true
	return nil
}

// Available reports whether initialization succeeded.
func (g *Gateway) Available() bool { return g.available }

func (g *Gateway) ready(collection string) (domain.CollectionDescriptor, error) {
	if !g.available {
		return domain.CollectionDescriptor{}, domain.ErrStoreUnavailable
	}
	desc, ok := g.descriptors[collection]
	if !ok {
		return domain.CollectionDescriptor{}, fmt.Errorf("collection %s: %w", collection, domain.ErrNotFound)
	}
	return desc, nil
}

// Upsert writes a single point.
func (g *Gateway) Upsert(ctx context.Context, collection string, p domain.Point) error {
	if _, err := g.ready(collection); err != nil {
		return err
	}
	if err := g.store.HSet(ctx, pointKey(collection, p.ID), pointFields(p)); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, p.ID, err)
	}
	return nil
}

// UpsertBatch writes points in fixed-size chunks, sequentially. A chunk
// failure aborts the remaining chunks and surfaces the error; chunks
// already committed are not rolled back.
func (g *Gateway) UpsertBatch(ctx context.Context, collection string, points []domain.Point) error {
	if _, err := g.ready(collection); err != nil {
		return err
	}

	for start := 0; start < len(points); start += g.batchSize {
		end := start + g.batchSize
		if end > len(points) {
			end = len(points)
		}

		items := make([]db.HashSetItem, 0, end-start)
		for _, p := range points[start:end] {
			items = append(items, db.HashSetItem{
				Key:    pointKey(collection, p.ID),
				Fields: pointFields(p),
			})
		}

		if err := g.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("upsert batch %s [%d:%d]: %w", collection, start, end, err)
		}
	}
	return nil
}

// Search runs a KNN query with an optional conjunctive equality filter.
func (g *Gateway) Search(
	ctx context.Context, collection string, vector []float32, filter domain.Filter, limit int,
) ([]domain.ScoredPoint, error) {
	if _, err := g.ready(collection); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	sr, err := g.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: indexName(collection),
		Filters:   filter,
		Vector:    vector,
		K:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]domain.ScoredPoint, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p := parsePoint(collection, entry.Key, entry.Fields, false)
		results = append(results, domain.ScoredPoint{Point: p, Score: entry.Score})
	}
	return results, nil
}

// Scroll iterates a collection page by page for bulk reads. The cursor is
// an opaque offset; empty next cursor means the end was reached.
func (g *Gateway) Scroll(
	ctx context.Context, collection, cursor string, filter domain.Filter, limit int, withVectors bool,
) ([]domain.Point, string, error) {
	if _, err := g.ready(collection); err != nil {
		return nil, "", err
	}
	if limit <= 0 {
		limit = 100
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrValidation)
		}
		offset = parsed
	}

	query := scrollQuery(filter)
	sr, err := g.store.SearchList(ctx, indexName(collection), query, offset, limit+1, nil)
	if err != nil {
		return nil, "", fmt.Errorf("scroll %s: %w", collection, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, "", nil
	}

	points := make([]domain.Point, 0, limit)
	for i, entry := range sr.Entries {
		if i >= limit {
			break
		}
		points = append(points, parsePoint(collection, entry.Key, entry.Fields, withVectors))
	}

	var next string
	if len(sr.Entries) > limit {
		next = strconv.Itoa(offset + limit)
	}
	return points, next, nil
}

// Delete removes a point by id.
func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	if _, err := g.ready(collection); err != nil {
		return err
	}
	key := pointKey(collection, id)
	exists, err := g.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("point %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	if err := g.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Count returns the number of points in a collection.
func (g *Gateway) Count(ctx context.Context, collection string) (int, error) {
	if _, err := g.ready(collection); err != nil {
		return 0, err
	}
	n, err := g.store.SearchCount(ctx, indexName(collection), "*")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Redis key patterns: straindex:{collection}:{id}, straindex:{collection}:idx

func pointKey(collection, id string) string {
	return fmt.Sprintf("%s%s:%s", domain.KeyPrefix, collection, id)
}

func indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)
}

func collectionPrefix(collection string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
}

func buildIndexDefinition(desc domain.CollectionDescriptor, hnswM, hnswEF int) *db.IndexDefinition {
	def := &db.IndexDefinition{
		Name:     indexName(desc.Name),
		Prefixes: []string{collectionPrefix(desc.Name)},
		Fields:   make([]db.IndexField, 0, len(desc.Fields)+1),
	}

	for _, f := range desc.Fields {
		fieldType := db.IndexFieldTag
		if f.Kind == domain.FieldNumeric {
			fieldType = db.IndexFieldNumeric
		}
		def.Fields = append(def.Fields, db.IndexField{Name: f.Name, Type: fieldType})
	}

	def.Fields = append(def.Fields, db.IndexField{
		Name:              "__vector",
		Alias:             "vector",
		Type:              db.IndexFieldVector,
		VectorAlgo:        db.VectorHNSW,
		VectorDim:         desc.Dimensions,
		VectorDistance:    distanceMetric(desc.Distance),
		VectorM:           hnswM,
		VectorEFConstruct: hnswEF,
	})

	return def
}

func distanceMetric(d domain.Distance) db.DistanceMetric {
	switch d {
	case domain.DistanceEuclidean:
		return db.DistanceL2
	case domain.DistanceDot:
		return db.DistanceIP
	default:
		return db.DistanceCosine
	}
}

// scrollQuery builds the FT.SEARCH query for Scroll: "*" without filters,
// otherwise the conjunctive tag filter.
func scrollQuery(filter domain.Filter) string {
	if len(filter) == 0 {
		return "*"
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	// Deterministic query text.
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("@" + k + ":{" + db.EscapeTag(filter[k]) + "}")
	}
	return sb.String()
}

// parsePoint rebuilds a domain.Point from flat hash fields. The __vector
// binary field is decoded only when requested.
func parsePoint(collection, key string, fields map[string]string, withVector bool) domain.Point {
	id := strings.TrimPrefix(key, collectionPrefix(collection))

	payload := make(map[string]string, len(fields))
	var vector []float32
	for k, v := range fields {
		if k == "__vector" {
			if withVector {
				vector = db.BytesToVector(v)
			}
			continue
		}
		payload[k] = v
	}

	return domain.Point{ID: id, Vector: vector, Payload: payload}
}

func pointFields(p domain.Point) map[string]string {
	fields := make(map[string]string, len(p.Payload)+1)
	for k, v := range p.Payload {
		fields[k] = v
	}
	fields["__vector"] = db.VectorToBytes(p.Vector)
	return fields
}
