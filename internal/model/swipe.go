package model

import (
	"slices"
	"time"
)

type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

func (d SwipeDirection) Valid() bool {
	return d == SwipeLeft || d == SwipeRight
}

type Participant struct {
	ID       string                    `json:"id"`
	Name     string                    `json:"name"`
	JoinedAt time.Time                 `json:"joined_at"`
	Swipes   map[string]SwipeDirection `json:"swipes"`
}

func NewParticipant(id, name string, joinedAt time.Time) Participant {
	return Participant{
		ID:       id,
		Name:     name,
		JoinedAt: joinedAt,
		Swipes:   make(map[string]SwipeDirection),
	}
}

func (p Participant) Decided(movieID string) bool {
	_, ok := p.Swipes[movieID]
	return ok
}

func (p Participant) Approved(movieID string) bool {
	return p.Swipes[movieID] == SwipeRight
}

func (p Participant) Clone() Participant {
	c := p
	c.Swipes = make(map[string]SwipeDirection, len(p.Swipes))
	for k, v := range p.Swipes {
		c.Swipes[k] = v
	}
	return c
}

// Match is append-only: created once per movie per room and never changed.
type Match struct {
	Movie        Movie     `json:"movie"`
	Participants []string  `json:"participants"`
	MatchedAt    time.Time `json:"matched_at"`
}

func (m Match) Clone() Match {
	c := m
	c.Movie = m.Movie.Clone()
	c.Participants = slices.Clone(m.Participants)
	return c
}
