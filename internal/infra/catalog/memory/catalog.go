package infra_catalog_memory

import (
	"context"
	"errors"

	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/samber/lo"
)

var ErrMovieNotFound = errors.New("movie not found")

// Catalog serves a fixed in-process movie list.
type Catalog struct {
	movies  []model.Movie
	shuffle bool
}

type Option func(*Catalog)

// WithoutShuffle keeps results in list order.
func WithoutShuffle() Option {
	return func(c *Catalog) {
		c.shuffle = false
	}
}

func New(movies []model.Movie, opts ...Option) *Catalog {
	c := &Catalog{
		movies:  lo.Map(movies, func(m model.Movie, _ int) model.Movie { return m.Clone() }),
		shuffle: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) Fetch(ctx context.Context, filters model.MovieFilters) ([]model.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	movies := lo.FilterMap(c.movies, func(m model.Movie, _ int) (model.Movie, bool) {
		return m.Clone(), filters.Matches(m)
	})
	if c.shuffle {
		movies = lo.Shuffle(movies)
	}
	return movies, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (model.Movie, error) {
	m, ok := lo.Find(c.movies, func(m model.Movie) bool { return m.ID == id })
	if !ok {
		return model.Movie{}, ErrMovieNotFound
	}
	return m.Clone(), nil
}
