package model

import (
	"slices"

	"github.com/samber/lo"
)

type StreamingOffer struct {
	Service string  `json:"service"`
	Link    string  `json:"link"`
	Quality string  `json:"quality,omitempty"`
	Price   *string `json:"price,omitempty"`
}

// Movie is an immutable catalog record. The room engine never mutates it.
type Movie struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Year     int              `json:"year"`
	Poster   string           `json:"poster"`
	Overview string           `json:"overview"`
	Genres   []string         `json:"genres"`
	Runtime  int              `json:"runtime"`
	Rating   float64          `json:"rating"`
	Offers   []StreamingOffer `json:"streaming_info"`
}

// Services lists distinct service names in offer order.
func (m Movie) Services() []string {
	return lo.Uniq(lo.Map(m.Offers, func(o StreamingOffer, _ int) string {
		return o.Service
	}))
}

// HasGenre and OfferedOn compare names exactly, as the catalog spells them.
func (m Movie) HasGenre(genre string) bool {
	return slices.Contains(m.Genres, genre)
}

func (m Movie) OfferedOn(service string) bool {
	return lo.ContainsBy(m.Offers, func(o StreamingOffer) bool {
		return o.Service == service
	})
}

func (m Movie) Clone() Movie {
	c := m
	c.Genres = append([]string(nil), m.Genres...)
	c.Offers = lo.Map(m.Offers, func(o StreamingOffer, _ int) StreamingOffer {
		if o.Price != nil {
			p := *o.Price
			o.Price = &p
		}
		return o
	})
	return c
}
