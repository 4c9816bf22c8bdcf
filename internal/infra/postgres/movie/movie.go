package infra_postgres_movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS movies (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	year     INT NOT NULL DEFAULT 0,
	poster   TEXT NOT NULL DEFAULT '',
	overview TEXT NOT NULL DEFAULT '',
	genres   TEXT[] NOT NULL DEFAULT '{}',
	runtime  INT NOT NULL DEFAULT 0,
	rating   DOUBLE PRECISION NOT NULL DEFAULT 0,
	offers   JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS movies_rating_idx ON movies (rating);
`

type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to init movies schema: %w", err)
	}
	return nil
}

// Fetch narrows by rating, runtime and genre in SQL. Services live in the
// offers document and are checked in Go together with the full predicate.
func (r *Repository) Fetch(ctx context.Context, filters model.MovieFilters) ([]model.Movie, error) {
	query := `
		SELECT id, title, year, poster, overview, genres, runtime, rating, offers
		FROM movies
		WHERE rating >= $1
		  AND ($2::int IS NULL OR runtime <= $2)
		  AND (cardinality($3::text[]) = 0 OR genres && $3::text[])
		ORDER BY random()
	`

	var maxRuntime any
	if filters.MaxRuntime != nil {
		maxRuntime = *filters.MaxRuntime
	}
	genres := filters.Genres
	if genres == nil {
		genres = []string{}
	}

	var moviesDB []MovieDB
	err := r.db.SelectContext(ctx, &moviesDB, query, filters.MinRating, maxRuntime, pq.Array(genres))
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}

	return lo.FilterMap(moviesDB, func(m MovieDB, _ int) (model.Movie, bool) {
		movie := m.ToDomain()
		return movie, filters.Matches(movie)
	}), nil
}

func (r *Repository) Store(ctx context.Context, m model.Movie) error {
	query := `
		INSERT INTO movies (id, title, year, poster, overview, genres, runtime, rating, offers)
		VALUES (:id, :title, :year, :poster, :overview, :genres, :runtime, :rating, :offers)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			year = EXCLUDED.year,
			poster = EXCLUDED.poster,
			overview = EXCLUDED.overview,
			genres = EXCLUDED.genres,
			runtime = EXCLUDED.runtime,
			rating = EXCLUDED.rating,
			offers = EXCLUDED.offers
	`

	if _, err := r.db.NamedExecContext(ctx, query, FromDomain(m)); err != nil {
		return fmt.Errorf("failed to store movie: %w", err)
	}
	return nil
}

func (r *Repository) LoadByID(ctx context.Context, id string) (model.Movie, error) {
	query := `
		SELECT id, title, year, poster, overview, genres, runtime, rating, offers
		FROM movies
		WHERE id = $1
	`

	var movieDB MovieDB
	if err := r.db.GetContext(ctx, &movieDB, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Movie{}, ErrMovieNotFound
		}
		return model.Movie{}, fmt.Errorf("failed to load movie by id: %w", err)
	}
	return movieDB.ToDomain(), nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM movies`); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

// SeedIfEmpty stores movies only into an empty table.
func (r *Repository) SeedIfEmpty(ctx context.Context, movies []model.Movie) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for _, m := range movies {
		if err := r.Store(ctx, m); err != nil {
			return 0, err
		}
	}
	return len(movies), nil
}
