package infra_postgres_movie

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/lib/pq"
)

type MovieDB struct {
	ID       string         `db:"id"`
	Title    string         `db:"title"`
	Year     int            `db:"year"`
	Poster   string         `db:"poster"`
	Overview string         `db:"overview"`
	Genres   pq.StringArray `db:"genres"`
	Runtime  int            `db:"runtime"`
	Rating   float64        `db:"rating"`
	Offers   OffersJSON     `db:"offers"`
}

// OffersJSON maps the jsonb offers column.
type OffersJSON []model.StreamingOffer

func (o OffersJSON) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]model.StreamingOffer(o))
}

func (o *OffersJSON) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = OffersJSON{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("offers: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]model.StreamingOffer)(o))
}

func (m *MovieDB) ToDomain() model.Movie {
	return model.Movie{
		ID:       m.ID,
		Title:    m.Title,
		Year:     m.Year,
		Poster:   m.Poster,
		Overview: m.Overview,
		Genres:   []string(m.Genres),
		Runtime:  m.Runtime,
		Rating:   m.Rating,
		Offers:   []model.StreamingOffer(m.Offers),
	}
}

func FromDomain(m model.Movie) MovieDB {
	return MovieDB{
		ID:       m.ID,
		Title:    m.Title,
		Year:     m.Year,
		Poster:   m.Poster,
		Overview: m.Overview,
		Genres:   pq.StringArray(m.Genres),
		Runtime:  m.Runtime,
		Rating:   m.Rating,
		Offers:   OffersJSON(m.Offers),
	}
}
