package service_swipe

import (
	"fmt"
	"slices"
	"time"

	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/samber/lo"
)

// Engine applies swipes and detects matches. It holds no state: rooms are
// passed in and a new room value is returned, the input is never mutated.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Apply records the participant's decision on movieID (latest write wins) and
// checks the swiped movie for a match. At most one match is returned.
func (e *Engine) Apply(
	room *model.Room,
	participantID string,
	movieID string,
	direction model.SwipeDirection,
	now time.Time,
) (*model.Room, []model.Match, error) {
	if !direction.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", model.ErrInvalidDirection, direction)
	}

	i := room.ParticipantIndex(participantID)
	if i < 0 {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrUnknownParticipant, participantID)
	}
	if !room.HasMovie(movieID) {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrUnknownMovie, movieID)
	}

	updated := room.Clone()
	updated.Participants[i].Swipes[movieID] = direction

	newMatches := make([]model.Match, 0, 1)
	if match, ok := evaluate(updated, movieID, now); ok {
		updated.Matches = append(updated.Matches, match)
		newMatches = append(newMatches, match.Clone())
	}
	updated.RecomputeCursor()

	return updated, newMatches, nil
}

// DetectMatches rescans every candidate against the current participants.
// For swipe-only histories it finds nothing Apply has not already found.
func (e *Engine) DetectMatches(room *model.Room, now time.Time) (*model.Room, []model.Match) {
	updated := room.Clone()

	newMatches := make([]model.Match, 0)
	for _, movie := range updated.Movies {
		if match, ok := evaluate(updated, movie.ID, now); ok {
			updated.Matches = append(updated.Matches, match)
			newMatches = append(newMatches, match.Clone())
		}
	}
	updated.RecomputeCursor()

	return updated, newMatches
}

// Unanimity over the current participant set, at most one match per movie.
func evaluate(room *model.Room, movieID string, now time.Time) (model.Match, bool) {
	if len(room.Participants) == 0 || room.HasMatch(movieID) {
		return model.Match{}, false
	}

	approvers := lo.FilterMap(room.Participants, func(p model.Participant, _ int) (string, bool) {
		return p.ID, p.Approved(movieID)
	})
	if len(approvers) != len(room.Participants) {
		return model.Match{}, false
	}

	movie, ok := room.Movie(movieID)
	if !ok {
		return model.Match{}, false
	}
	slices.Sort(approvers)

	return model.Match{
		Movie:        movie.Clone(),
		Participants: approvers,
		MatchedAt:    now,
	}, true
}
