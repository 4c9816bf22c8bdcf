package model

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// MovieFilters is fixed once a room is created from it.
type MovieFilters struct {
	Genres     []string `json:"genres,omitempty" validate:"omitempty,dive,required"`
	Services   []string `json:"services,omitempty" validate:"omitempty,dive,required"`
	MinRating  float64  `json:"min_rating" validate:"gte=0,lte=10"`
	MaxRuntime *int     `json:"max_runtime,omitempty" validate:"omitempty,gt=0"`
	Region     string   `json:"region,omitempty" validate:"omitempty,len=2,alpha"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func filtersValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func (f MovieFilters) Validate() error {
	if err := filtersValidator().Struct(f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilters, err)
	}
	return nil
}

// Matches reports whether a movie qualifies for the filters.
// Empty genre and service sets mean no restriction.
func (f MovieFilters) Matches(m Movie) bool {
	if len(f.Genres) > 0 && !lo.SomeBy(f.Genres, m.HasGenre) {
		return false
	}
	if m.Rating < f.MinRating {
		return false
	}
	if f.MaxRuntime != nil && m.Runtime > *f.MaxRuntime {
		return false
	}
	if len(f.Services) > 0 && !lo.SomeBy(f.Services, m.OfferedOn) {
		return false
	}
	return true
}

func (f MovieFilters) Clone() MovieFilters {
	c := f
	c.Genres = append([]string(nil), f.Genres...)
	c.Services = append([]string(nil), f.Services...)
	if f.MaxRuntime != nil {
		v := *f.MaxRuntime
		c.MaxRuntime = &v
	}
	return c
}
