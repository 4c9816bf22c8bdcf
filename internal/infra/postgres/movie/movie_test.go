package infra_postgres_movie

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovieInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	mock       sqlmock.Sqlmock
	repository *Repository
	ctx        context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	return &resources{
		mock:       mock,
		repository: New(sqlx.NewDb(db, "sqlmock")),
		ctx:        context.Background(),
	}
}

var columns = []string{"id", "title", "year", "poster", "overview", "genres", "runtime", "rating", "offers"}

func movieRows() *sqlmock.Rows {
	return sqlmock.NewRows(columns).
		AddRow("1", "Knives Out", 2019, "p1", "o1", "{Mystery,Comedy}", 130, 7.9,
			[]byte(`[{"service":"Netflix","link":"n","quality":"HD"}]`)).
		AddRow("2", "Booksmart", 2019, "p2", "o2", "{Comedy}", 99, 8.1,
			[]byte(`[{"service":"Hulu","link":"h","quality":"HD","price":"$2.99"}]`)).
		AddRow("3", "Parasite", 2019, "p3", "o3", "{Thriller}", 132, 8.6, nil)
}

// textArray matches a pq text array argument by its wire form.
type textArray string

func (a textArray) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s == string(a)
}

func (suite *MovieInfraUnitSuite) TestFetch(t provider.T) {
	t.Parallel()

	runtime := 135

	testCases := []struct {
		name          string
		filters       model.MovieFilters
		setupMocks    func(r *resources)
		expected      []string
		errorContains string
	}{
		{
			name:    "Should decode every row when filters are empty",
			filters: model.MovieFilters{},
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("SELECT (.+) FROM movies WHERE rating >= \\$1").
					WithArgs(0.0, nil, sqlmock.AnyArg()).
					WillReturnRows(movieRows())
			},
			expected: []string{"1", "2", "3"},
		},
		{
			name:    "Should post filter by streaming service",
			filters: model.MovieFilters{Services: []string{"Hulu"}, MaxRuntime: &runtime},
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("SELECT (.+) FROM movies").
					WithArgs(0.0, 135, sqlmock.AnyArg()).
					WillReturnRows(movieRows())
			},
			expected: []string{"2"},
		},
		{
			name:    "Should not fold the case of a streaming service",
			filters: model.MovieFilters{Services: []string{"hulu"}},
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("SELECT (.+) FROM movies").
					WillReturnRows(movieRows())
			},
			expected: []string{},
		},
		{
			name:    "Should pass genres to the overlap check verbatim",
			filters: model.MovieFilters{Genres: []string{"Comedy", "mystery"}},
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("SELECT (.+) FROM movies (.+) genres && \\$3::text\\[\\]").
					WithArgs(0.0, nil, textArray(`{"Comedy","mystery"}`)).
					WillReturnRows(movieRows())
			},
			expected: []string{"1", "2"},
		},
		{
			name:    "Should wrap query failure",
			filters: model.MovieFilters{MinRating: 8},
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("SELECT (.+) FROM movies").
					WillReturnError(errors.New("connection reset"))
			},
			errorContains: "failed to query movies",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			movies, err := r.repository.Fetch(r.ctx, tc.filters)

			if tc.errorContains != "" {
				assert.ErrorContains(t, err, tc.errorContains)
				assert.Nil(t, movies)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, lo.Map(movies, func(m model.Movie, _ int) string { return m.ID }))
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *MovieInfraUnitSuite) TestFetchDecodesOffers(t provider.T) {
	t.Parallel()
	r := initResources(t)
	r.mock.ExpectQuery("SELECT (.+) FROM movies").WillReturnRows(movieRows())

	movies, err := r.repository.Fetch(r.ctx, model.MovieFilters{})

	require.NoError(t, err)
	require.Len(t, movies, 3)
	assert.Equal(t, []string{"Mystery", "Comedy"}, movies[0].Genres)
	require.Len(t, movies[1].Offers, 1)
	require.NotNil(t, movies[1].Offers[0].Price)
	assert.Equal(t, "$2.99", *movies[1].Offers[0].Price)
	assert.Empty(t, movies[2].Offers)
}

func (suite *MovieInfraUnitSuite) TestStore(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources)
		errorContains string
	}{
		{
			name: "Should upsert movie",
			setupMocks: func(r *resources) {
				r.mock.ExpectExec("INSERT INTO movies (.+) ON CONFLICT \\(id\\) DO UPDATE").
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "Should wrap insert failure",
			setupMocks: func(r *resources) {
				r.mock.ExpectExec("INSERT INTO movies").
					WillReturnError(errors.New("insert error"))
			},
			errorContains: "failed to store movie",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			err := r.repository.Store(r.ctx, model.Movie{ID: "1", Title: "Knives Out", Genres: []string{"Mystery"}})

			if tc.errorContains != "" {
				assert.ErrorContains(t, err, tc.errorContains)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *MovieInfraUnitSuite) TestLoadByID(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		setupMocks func(r *resources)
		errorType  error
	}{
		{
			name: "Should load movie",
			setupMocks: func(r *resources) {
				rows := sqlmock.NewRows(columns).
					AddRow("4", "Inception", 2010, "p", "o", "{Sci-Fi}", 148, 8.8, []byte(`[]`))
				r.mock.ExpectQuery("SELECT (.+) FROM movies WHERE id = \\$1").
					WithArgs("4").
					WillReturnRows(rows)
			},
		},
		{
			name: "Should map missing row to ErrMovieNotFound",
			setupMocks: func(r *resources) {
				r.mock.ExpectQuery("SELECT (.+) FROM movies WHERE id = \\$1").
					WithArgs("4").
					WillReturnError(sql.ErrNoRows)
			},
			errorType: ErrMovieNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			movie, err := r.repository.LoadByID(r.ctx, "4")

			if tc.errorType != nil {
				assert.ErrorIs(t, err, tc.errorType)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Inception", movie.Title)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (suite *MovieInfraUnitSuite) TestSeedIfEmpty(t provider.T) {
	t.Parallel()

	movies := []model.Movie{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}

	t.Run("Should skip populated table", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectQuery("SELECT count\\(\\*\\) FROM movies").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

		n, err := r.repository.SeedIfEmpty(r.ctx, movies)

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})

	t.Run("Should store every movie into empty table", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectQuery("SELECT count\\(\\*\\) FROM movies").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		r.mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(1, 1))
		r.mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(1, 1))

		n, err := r.repository.SeedIfEmpty(r.ctx, movies)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})
}

func TestMovieInfraUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(MovieInfraUnitSuite))
}
