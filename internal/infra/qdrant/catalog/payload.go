package infra_qdrant_catalog

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/qdrant/go-client/qdrant"
	"github.com/samber/lo"
)

const (
	fieldMovieID     = "movie_id"
	fieldTitle       = "title"
	fieldYear        = "year"
	fieldPoster      = "poster"
	fieldOverview    = "overview"
	fieldGenres      = "genres"
	fieldRuntime     = "runtime"
	fieldRating      = "rating"
	fieldOffers      = "offers"
	fieldServices    = "services"
)

var ErrMalformedPoint = errors.New("malformed movie point")

var idNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// pointID keeps numeric movie ids numeric and hashes the rest into a UUID.
func pointID(movieID string) *qdrant.PointId {
	if n, err := strconv.ParseUint(movieID, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewIDUUID(uuid.NewSHA1(idNamespace, []byte(movieID)).String())
}

func anyList(values []string) []any {
	return lo.Map(values, func(v string, _ int) any { return v })
}

func toPayload(m model.Movie) map[string]*qdrant.Value {
	offers := lo.Map(m.Offers, func(o model.StreamingOffer, _ int) any {
		offer := map[string]any{
			"service": o.Service,
			"link":    o.Link,
			"quality": o.Quality,
		}
		if o.Price != nil {
			offer["price"] = *o.Price
		}
		return offer
	})

	return qdrant.NewValueMap(map[string]any{
		fieldMovieID:     m.ID,
		fieldTitle:       m.Title,
		fieldYear:        m.Year,
		fieldPoster:      m.Poster,
		fieldOverview:    m.Overview,
		fieldGenres:      anyList(m.Genres),
		fieldRuntime:     m.Runtime,
		fieldRating:      m.Rating,
		fieldOffers:      offers,
		fieldServices:    anyList(m.Services()),
	})
}

func stringList(v *qdrant.Value) []string {
	return lo.FilterMap(v.GetListValue().GetValues(), func(item *qdrant.Value, _ int) (string, bool) {
		s := item.GetStringValue()
		return s, s != ""
	})
}

func number(v *qdrant.Value) float64 {
	if _, ok := v.GetKind().(*qdrant.Value_IntegerValue); ok {
		return float64(v.GetIntegerValue())
	}
	return v.GetDoubleValue()
}

func fromPoint(p *qdrant.RetrievedPoint) (model.Movie, error) {
	payload := p.GetPayload()

	id := payload[fieldMovieID].GetStringValue()
	if id == "" {
		switch {
		case p.GetId().GetUuid() != "":
			id = p.GetId().GetUuid()
		case p.GetId() != nil:
			id = strconv.FormatUint(p.GetId().GetNum(), 10)
		default:
			return model.Movie{}, fmt.Errorf("%w: no id", ErrMalformedPoint)
		}
	}

	title := payload[fieldTitle].GetStringValue()
	if title == "" {
		return model.Movie{}, fmt.Errorf("%w: movie %s has no title", ErrMalformedPoint, id)
	}

	offers := lo.Map(payload[fieldOffers].GetListValue().GetValues(), func(item *qdrant.Value, _ int) model.StreamingOffer {
		fields := item.GetStructValue().GetFields()
		offer := model.StreamingOffer{
			Service: fields["service"].GetStringValue(),
			Link:    fields["link"].GetStringValue(),
			Quality: fields["quality"].GetStringValue(),
		}
		if price, ok := fields["price"]; ok && price.GetStringValue() != "" {
			offer.Price = lo.ToPtr(price.GetStringValue())
		}
		return offer
	})

	return model.Movie{
		ID:       id,
		Title:    title,
		Year:     int(number(payload[fieldYear])),
		Poster:   payload[fieldPoster].GetStringValue(),
		Overview: payload[fieldOverview].GetStringValue(),
		Genres:   stringList(payload[fieldGenres]),
		Runtime:  int(number(payload[fieldRuntime])),
		Rating:   number(payload[fieldRating]),
		Offers:   offers,
	}, nil
}
