package infra_qdrant_catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/qdrant/go-client/qdrant"
	"github.com/samber/lo"
)

const (
	DefaultCollection = "movies"
	DefaultLimit      = 500
)

type Client interface {
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
}

// Catalog reads movies from payload-only points of a qdrant collection.
type Catalog struct {
	client     Client
	collection string
	limit      uint32
	logger     *slog.Logger
}

type Option func(*Catalog)

func WithCollection(name string) Option {
	return func(c *Catalog) {
		if name != "" {
			c.collection = name
		}
	}
}

func WithLimit(limit uint32) Option {
	return func(c *Catalog) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

func New(client Client, opts ...Option) *Catalog {
	c := &Catalog{
		client:     client,
		collection: DefaultCollection,
		limit:      DefaultLimit,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func buildFilter(filters model.MovieFilters) *qdrant.Filter {
	var must []*qdrant.Condition

	if genres := keywords(filters.Genres); len(genres) > 0 {
		must = append(must, qdrant.NewMatchKeywords(fieldGenres, genres...))
	}
	if services := keywords(filters.Services); len(services) > 0 {
		must = append(must, qdrant.NewMatchKeywords(fieldServices, services...))
	}
	if filters.MinRating > 0 {
		must = append(must, qdrant.NewRange(fieldRating, &qdrant.Range{
			Gte: qdrant.PtrOf(filters.MinRating),
		}))
	}
	if filters.MaxRuntime != nil {
		must = append(must, qdrant.NewRange(fieldRuntime, &qdrant.Range{
			Lte: qdrant.PtrOf(float64(*filters.MaxRuntime)),
		}))
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// Keyword matching is exact, values are passed as the catalog spells them.
func keywords(values []string) []string {
	return lo.Uniq(lo.Compact(values))
}

func (c *Catalog) Fetch(ctx context.Context, filters model.MovieFilters) ([]model.Movie, error) {
	points, err := c.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: c.collection,
		Filter:         buildFilter(filters),
		Limit:          qdrant.PtrOf(c.limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll movies: %w", err)
	}

	movies := make([]model.Movie, 0, len(points))
	for _, p := range points {
		m, err := fromPoint(p)
		if err != nil {
			c.logger.Warn("skipping movie point", slog.String("error", err.Error()))
			continue
		}
		if filters.Matches(m) {
			movies = append(movies, m)
		}
	}
	return lo.Shuffle(movies), nil
}

// EnsureCollection creates the collection with a single-dimension vector
// space when it does not exist yet.
func (c *Catalog) EnsureCollection(ctx context.Context) error {
	exists, err := c.client.CollectionExists(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     1,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (c *Catalog) Store(ctx context.Context, movies ...model.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	points := lo.Map(movies, func(m model.Movie, _ int) *qdrant.PointStruct {
		return &qdrant.PointStruct{
			Id:      pointID(m.ID),
			Vectors: qdrant.NewVectors(1),
			Payload: toPayload(m),
		}
	})

	_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert movies: %w", err)
	}
	return nil
}
