package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovieFiltersMatches(t *testing.T) {
	runtime := 120
	movie := Movie{
		ID:      "1",
		Genres:  []string{"Drama", "Sci-Fi"},
		Runtime: 110,
		Rating:  8.0,
		Offers:  []StreamingOffer{{Service: "Netflix", Link: "https://netflix.com"}},
	}

	tests := []struct {
		name     string
		filters  MovieFilters
		expected bool
	}{
		{name: "no restriction", filters: MovieFilters{}, expected: true},
		{name: "one of the requested genres", filters: MovieFilters{Genres: []string{"Horror", "Sci-Fi"}}, expected: true},
		{name: "genre differs in case", filters: MovieFilters{Genres: []string{"drama"}}, expected: false},
		{name: "genre with padding", filters: MovieFilters{Genres: []string{" Drama"}}, expected: false},
		{name: "requested service", filters: MovieFilters{Services: []string{"Netflix"}}, expected: true},
		{name: "service differs in case", filters: MovieFilters{Services: []string{"NETFLIX"}}, expected: false},
		{name: "rating is inclusive", filters: MovieFilters{MinRating: 8.0}, expected: true},
		{name: "rating too low", filters: MovieFilters{MinRating: 8.1}, expected: false},
		{name: "runtime within limit", filters: MovieFilters{MaxRuntime: &runtime}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filters.Matches(movie))
		})
	}
}

func TestMovieFiltersValidate(t *testing.T) {
	assert.NoError(t, MovieFilters{Genres: []string{"Drama"}, MinRating: 10}.Validate())
	assert.ErrorIs(t, MovieFilters{MinRating: 10.5}.Validate(), ErrInvalidFilters)
	assert.ErrorIs(t, MovieFilters{Genres: []string{""}}.Validate(), ErrInvalidFilters)
}
