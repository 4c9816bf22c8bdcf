package service_swipe

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/humanbelnik/moviematch/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SwipeEngineSuite struct {
	suite.Suite
}

var testNow = time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

type RoomBuilder struct {
	r model.Room
}

func NewRoomBuilder() *RoomBuilder {
	return &RoomBuilder{
		r: model.Room{
			ID:         "room-1",
			InviteCode: "ABC123",
			CreatedAt:  testNow.Add(-time.Hour),
			Movies: []model.Movie{
				{ID: "A", Title: "A", Rating: 7.9},
				{ID: "B", Title: "B", Rating: 8.1},
				{ID: "C", Title: "C", Rating: 8.6},
			},
		},
	}
}

func (b *RoomBuilder) WithParticipants(ids ...string) *RoomBuilder {
	for _, id := range ids {
		b.r.Participants = append(b.r.Participants, model.NewParticipant(id, "name-"+id, testNow))
	}
	if b.r.CreatedBy == "" && len(ids) > 0 {
		b.r.CreatedBy = ids[0]
	}
	return b
}

func (b *RoomBuilder) Build() *model.Room {
	r := b.r
	return r.Clone()
}

func mustApply(t provider.T, e *Engine, room *model.Room, pid, mid string, dir model.SwipeDirection) (*model.Room, []model.Match) {
	updated, matches, err := e.Apply(room, pid, mid, dir, testNow)
	require.NoError(t, err)
	return updated, matches
}

func (s *SwipeEngineSuite) TestTwoParticipantScenario(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1", "P2").Build()

	room, matches := mustApply(t, e, room, "P1", "A", model.SwipeRight)
	assert.Empty(t, matches)

	room, matches = mustApply(t, e, room, "P2", "A", model.SwipeRight)
	require.Len(t, matches, 1)
	assert.Equal(t, "A", matches[0].Movie.ID)
	assert.Equal(t, []string{"P1", "P2"}, matches[0].Participants)
	assert.Equal(t, testNow, matches[0].MatchedAt)

	room, matches = mustApply(t, e, room, "P1", "B", model.SwipeRight)
	assert.Empty(t, matches)
	room, matches = mustApply(t, e, room, "P2", "B", model.SwipeLeft)
	assert.Empty(t, matches)

	require.Len(t, room.Matches, 1)
	assert.False(t, room.HasMatch("B"))
}

func (s *SwipeEngineSuite) TestOrderDoesNotMatterForRejectedMovie(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1", "P2").Build()

	room, _ = mustApply(t, e, room, "P2", "B", model.SwipeLeft)
	room, matches := mustApply(t, e, room, "P1", "B", model.SwipeRight)

	assert.Empty(t, matches)
	assert.Empty(t, room.Matches)
}

func (s *SwipeEngineSuite) TestSingleParticipantMatchesImmediately(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1").Build()

	_, matches := mustApply(t, e, room, "P1", "C", model.SwipeRight)

	require.Len(t, matches, 1)
	assert.Equal(t, []string{"P1"}, matches[0].Participants)
}

func (s *SwipeEngineSuite) TestOverwriteKeepsOneLedgerEntry(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1", "P2").Build()

	room, _ = mustApply(t, e, room, "P2", "A", model.SwipeRight)
	room, matches := mustApply(t, e, room, "P1", "A", model.SwipeLeft)
	assert.Empty(t, matches)

	room, matches = mustApply(t, e, room, "P1", "A", model.SwipeRight)
	require.Len(t, matches, 1)

	p1, _ := room.Participant("P1")
	assert.Len(t, p1.Swipes, 1)
	assert.Equal(t, model.SwipeRight, p1.Swipes["A"])
}

func (s *SwipeEngineSuite) TestMatchIsCreatedOnce(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1", "P2").Build()

	room, _ = mustApply(t, e, room, "P1", "A", model.SwipeRight)
	room, matches := mustApply(t, e, room, "P2", "A", model.SwipeRight)
	require.Len(t, matches, 1)

	// change of mind after the match does not revoke it
	room, _ = mustApply(t, e, room, "P2", "A", model.SwipeLeft)
	room, matches = mustApply(t, e, room, "P2", "A", model.SwipeRight)

	assert.Empty(t, matches)
	assert.Len(t, room.Matches, 1)
}

func (s *SwipeEngineSuite) TestLateJoinerIsRequired(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1", "P2").Build()

	room, _ = mustApply(t, e, room, "P1", "A", model.SwipeRight)
	room.Participants = append(room.Participants, model.NewParticipant("P3", "late", testNow))

	room, matches := mustApply(t, e, room, "P2", "A", model.SwipeRight)
	assert.Empty(t, matches, "P3 has not decided on A yet")

	_, matches = mustApply(t, e, room, "P3", "A", model.SwipeRight)
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"P1", "P2", "P3"}, matches[0].Participants)
}

func (s *SwipeEngineSuite) TestPreconditions(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		participantID string
		movieID       string
		direction     model.SwipeDirection
		expectedError error
	}{
		{
			name:          "Should reject unknown participant",
			participantID: "ghost",
			movieID:       "A",
			direction:     model.SwipeRight,
			expectedError: model.ErrUnknownParticipant,
		},
		{
			name:          "Should reject movie outside candidates",
			participantID: "P1",
			movieID:       "Z",
			direction:     model.SwipeRight,
			expectedError: model.ErrUnknownMovie,
		},
		{
			name:          "Should reject unknown direction",
			participantID: "P1",
			movieID:       "A",
			direction:     model.SwipeDirection("up"),
			expectedError: model.ErrInvalidDirection,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			e := New()
			room := NewRoomBuilder().WithParticipants("P1").Build()
			before := room.Clone()

			updated, matches, err := e.Apply(room, tc.participantID, tc.movieID, tc.direction, testNow)

			assert.ErrorIs(t, err, tc.expectedError)
			assert.Nil(t, updated)
			assert.Nil(t, matches)
			assert.Equal(t, before, room)
		})
	}
}

func (s *SwipeEngineSuite) TestApplyDoesNotMutateInput(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1").Build()
	before := room.Clone()

	_, _ = mustApply(t, e, room, "P1", "A", model.SwipeRight)

	assert.Equal(t, before, room)
}

func (s *SwipeEngineSuite) TestCursorFollowsSlowestParticipant(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1", "P2").Build()

	room, _ = mustApply(t, e, room, "P1", "A", model.SwipeRight)
	room, _ = mustApply(t, e, room, "P1", "B", model.SwipeRight)
	assert.Equal(t, 0, room.CurrentMovieIndex)

	room, _ = mustApply(t, e, room, "P2", "A", model.SwipeLeft)
	assert.Equal(t, 1, room.CurrentMovieIndex)
	assert.Equal(t, []string{"C"}, room.Undecided("P1"))
	assert.Equal(t, []string{"B", "C"}, room.Undecided("P2"))
}

func (s *SwipeEngineSuite) TestRescanMatchesIncremental(t provider.T) {
	t.Parallel()
	e := New()
	rng := rand.New(rand.NewPCG(7, 11))
	participants := []string{"P1", "P2", "P3"}
	movies := []string{"A", "B", "C"}
	directions := []model.SwipeDirection{model.SwipeLeft, model.SwipeRight, model.SwipeRight}

	incremental := NewRoomBuilder().WithParticipants(participants...).Build()
	for range 60 {
		pid := participants[rng.IntN(len(participants))]
		mid := movies[rng.IntN(len(movies))]
		dir := directions[rng.IntN(len(directions))]
		incremental, _ = mustApply(t, e, incremental, pid, mid, dir)
	}

	// same ledgers without any match bookkeeping
	bare := incremental.Clone()
	bare.Matches = nil

	rescanned, found := e.DetectMatches(bare, testNow)

	matchedIDs := func(ms []model.Match) map[string][]string {
		out := make(map[string][]string, len(ms))
		for _, m := range ms {
			out[m.Movie.ID] = m.Participants
		}
		return out
	}
	// a match stays even if a later swipe broke unanimity, so the rescan can only
	// find a subset of what was found incrementally
	for id, who := range matchedIDs(rescanned.Matches) {
		assert.Contains(t, matchedIDs(incremental.Matches), id)
		assert.Equal(t, participants, who)
	}
	assert.Len(t, found, len(rescanned.Matches))

	again, none := e.DetectMatches(incremental, testNow)
	assert.Empty(t, none)
	assert.Equal(t, incremental.Matches, again.Matches)
}

func (s *SwipeEngineSuite) TestRescanAfterLeave(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().WithParticipants("P1", "P2", "P3").Build()

	room, _ = mustApply(t, e, room, "P1", "C", model.SwipeRight)
	room, _ = mustApply(t, e, room, "P2", "C", model.SwipeRight)
	room.Participants = room.Participants[:2]

	rescanned, matches := e.DetectMatches(room, testNow)

	require.Len(t, matches, 1)
	assert.Equal(t, "C", matches[0].Movie.ID)
	assert.Equal(t, []string{"P1", "P2"}, matches[0].Participants)
	assert.True(t, rescanned.HasMatch("C"))
}

func (s *SwipeEngineSuite) TestEmptyRoomNeverMatches(t provider.T) {
	t.Parallel()
	e := New()
	room := NewRoomBuilder().Build()

	_, matches := e.DetectMatches(room, testNow)

	assert.Empty(t, matches)
}

func TestSwipeEngineSuite(t *testing.T) {
	suite.RunSuite(t, new(SwipeEngineSuite))
}
