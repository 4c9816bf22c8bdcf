package model

import (
	"time"

	"github.com/samber/lo"
)

type ParticipantView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
	Decided  int       `json:"decided"`
}

// RoomSnapshot is the read-only projection handed to clients.
// Other participants' ledgers are reduced to progress counts.
type RoomSnapshot struct {
	ID                string            `json:"id"`
	InviteCode        string            `json:"invite_code"`
	CreatedBy         string            `json:"created_by"`
	CreatedAt         time.Time         `json:"created_at"`
	Participants      []ParticipantView `json:"participants"`
	Movies            []Movie           `json:"movies"`
	Matches           []Match           `json:"matches"`
	Filters           MovieFilters      `json:"filters"`
	CurrentMovieIndex int               `json:"current_movie_index"`

	// Requester view.
	ParticipantID string                    `json:"participant_id,omitempty"`
	Undecided     []string                  `json:"undecided"`
	NextMovie     *Movie                    `json:"next_movie,omitempty"`
	Swipes        map[string]SwipeDirection `json:"swipes,omitempty"`
}

// Snapshot projects the room for the given participant. An empty
// participantID yields the room view without the requester part.
func (r *Room) Snapshot(participantID string) RoomSnapshot {
	c := r.Clone()
	s := RoomSnapshot{
		ID:         c.ID,
		InviteCode: c.InviteCode,
		CreatedBy:  c.CreatedBy,
		CreatedAt:  c.CreatedAt,
		Participants: lo.Map(c.Participants, func(p Participant, _ int) ParticipantView {
			return ParticipantView{
				ID:       p.ID,
				Name:     p.Name,
				JoinedAt: p.JoinedAt,
				Decided:  len(p.Swipes),
			}
		}),
		Movies:            c.Movies,
		Matches:           c.Matches,
		Filters:           c.Filters,
		CurrentMovieIndex: c.CurrentMovieIndex,
		Undecided:         []string{},
	}

	p, ok := c.Participant(participantID)
	if !ok {
		return s
	}
	s.ParticipantID = p.ID
	s.Swipes = p.Swipes
	s.Undecided = c.Undecided(p.ID)
	if len(s.Undecided) > 0 {
		next, _ := c.Movie(s.Undecided[0])
		s.NextMovie = &next
	}
	return s
}
