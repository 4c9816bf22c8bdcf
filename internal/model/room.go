package model

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

type Room struct {
	ID         string    `json:"id"`
	InviteCode string    `json:"invite_code"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`

	Participants []Participant `json:"participants"`
	// Fixed at creation.
	Movies []Movie `json:"movies"`
	// Group cursor, derived from the ledgers. Match logic never reads it.
	CurrentMovieIndex int          `json:"current_movie_index"`
	Matches           []Match      `json:"matches"`
	Filters           MovieFilters `json:"filters"`
}

func (r *Room) Clone() *Room {
	c := *r
	c.Participants = lo.Map(r.Participants, func(p Participant, _ int) Participant { return p.Clone() })
	c.Movies = lo.Map(r.Movies, func(m Movie, _ int) Movie { return m.Clone() })
	c.Matches = lo.Map(r.Matches, func(m Match, _ int) Match { return m.Clone() })
	c.Filters = r.Filters.Clone()
	return &c
}

func (r *Room) ParticipantIndex(id string) int {
	return slices.IndexFunc(r.Participants, func(p Participant) bool { return p.ID == id })
}

func (r *Room) Participant(id string) (Participant, bool) {
	i := r.ParticipantIndex(id)
	if i < 0 {
		return Participant{}, false
	}
	return r.Participants[i], true
}

func (r *Room) Movie(id string) (Movie, bool) {
	return lo.Find(r.Movies, func(m Movie) bool { return m.ID == id })
}

func (r *Room) HasMovie(id string) bool {
	_, ok := r.Movie(id)
	return ok
}

func (r *Room) HasMatch(movieID string) bool {
	return lo.ContainsBy(r.Matches, func(m Match) bool { return m.Movie.ID == movieID })
}

// Undecided returns candidate ids the participant has no ledger entry for,
// in candidate order.
func (r *Room) Undecided(participantID string) []string {
	p, ok := r.Participant(participantID)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(r.Movies))
	for _, m := range r.Movies {
		if !p.Decided(m.ID) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// RecomputeCursor moves the group cursor to the first candidate some current
// participant has not decided yet.
func (r *Room) RecomputeCursor() {
	for i, m := range r.Movies {
		if !lo.EveryBy(r.Participants, func(p Participant) bool { return p.Decided(m.ID) }) {
			r.CurrentMovieIndex = i
			return
		}
	}
	r.CurrentMovieIndex = len(r.Movies)
}

func (r *Room) DirectoryEntry() DirectoryEntry {
	return DirectoryEntry{
		ID:               r.ID,
		InviteCode:       r.InviteCode,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		ParticipantCount: len(r.Participants),
	}
}

// DirectoryEntry is the discovery listing of a joinable room.
// It is never consulted for match logic.
type DirectoryEntry struct {
	ID               string    `json:"id"`
	InviteCode       string    `json:"invite_code"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	ParticipantCount int       `json:"participant_count"`
}
