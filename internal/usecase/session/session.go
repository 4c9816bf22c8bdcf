package usecase_session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/humanbelnik/moviematch/internal/model"
	service_swipe "github.com/humanbelnik/moviematch/internal/service/swipe"
	usecase_room "github.com/humanbelnik/moviematch/internal/usecase/room"
)

//go:generate mockery --name=Publisher --output=./mocks/session/publisher --filename=publisher.go
type Publisher interface {
	Publish(event model.RoomEvent)
}

// Directory is the discovery listing of joinable rooms. It trails the store
// and is never read back for room logic. Writes for a room are made under that
// room's lock, so a closed room is never listed again.
//
//go:generate mockery --name=Directory --output=./mocks/session/directory --filename=directory.go
type Directory interface {
	Upsert(ctx context.Context, entry model.DirectoryEntry) error
	Remove(ctx context.Context, code string) error
	List(ctx context.Context) ([]model.DirectoryEntry, error)
}

type Coordinator struct {
	store     *usecase_room.Store
	engine    *service_swipe.Engine
	publisher Publisher
	directory Directory
	logger    *slog.Logger
}

type Option func(*Coordinator)

func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) {
		c.publisher = p
	}
}

func WithDirectory(d Directory) Option {
	return func(c *Coordinator) {
		c.directory = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func New(store *usecase_room.Store, engine *service_swipe.Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Session struct {
	RoomCode    string
	Participant model.Participant
	Snapshot    model.RoomSnapshot
	// False for an idempotent re-join.
	Joined bool
}

type SwipeResult struct {
	NewMatches []model.Match
	Snapshot   model.RoomSnapshot
}

func (c *Coordinator) CreateRoom(ctx context.Context, creatorName string, filters model.MovieFilters) (Session, error) {
	room, err := c.store.CreateRoom(ctx, creatorName, filters)
	if err != nil {
		return Session{}, err
	}

	c.syncDirectory(ctx, room.InviteCode)

	creator, _ := room.Participant(room.CreatedBy)
	return Session{
		RoomCode:    room.InviteCode,
		Participant: creator,
		Snapshot:    room.Snapshot(creator.ID),
		Joined:      true,
	}, nil
}

// JoinRoom accepts a participantID from a returning client; an empty or
// unknown id joins a new participant.
func (c *Coordinator) JoinRoom(ctx context.Context, code, name, participantID string) (Session, error) {
	res, err := c.store.JoinRoom(ctx, code, name, participantID)
	if err != nil {
		return Session{}, err
	}

	if res.Joined {
		c.syncDirectory(ctx, res.Room.InviteCode)
		c.publish(res.Room.InviteCode, model.EventParticipantJoined, participantPayload{
			ParticipantID:     res.Participant.ID,
			Name:              res.Participant.Name,
			ParticipantsCount: len(res.Room.Participants),
		})
	}

	return Session{
		RoomCode:    res.Room.InviteCode,
		Participant: res.Participant,
		Snapshot:    res.Room.Snapshot(res.Participant.ID),
		Joined:      res.Joined,
	}, nil
}

func (c *Coordinator) LeaveRoom(ctx context.Context, code, participantID string) error {
	res, err := c.store.LeaveRoom(ctx, code, participantID)
	if err != nil {
		if errors.Is(err, model.ErrUnknownParticipant) {
			c.logger.Warn("leave by non-member", slog.String("room_code", code), slog.String("participant_id", participantID))
		}
		return err
	}
	roomCode := res.Room.InviteCode

	c.publish(roomCode, model.EventParticipantLeft, participantPayload{
		ParticipantID:     res.Participant.ID,
		Name:              res.Participant.Name,
		ParticipantsCount: len(res.Room.Participants),
	})

	c.syncDirectory(ctx, roomCode)

	if res.Closed {
		c.publish(roomCode, model.EventRoomClosed, closedPayload{Reason: "empty"})
		return nil
	}

	for _, m := range res.NewMatches {
		c.publish(roomCode, model.EventMatchFound, m)
	}
	return nil
}

// Swipe runs the engine inside the room's critical section. Unknown
// participant or movie means the client holds stale state: logged and
// rejected, the room is not touched.
func (c *Coordinator) Swipe(
	ctx context.Context,
	code string,
	participantID string,
	movieID string,
	direction model.SwipeDirection,
) (SwipeResult, error) {
	var newMatches []model.Match

	room, err := c.store.Mutate(ctx, code, func(room *model.Room) (*model.Room, error) {
		updated, matches, err := c.engine.Apply(room, participantID, movieID, direction, c.store.Now())
		if err != nil {
			return nil, err
		}
		newMatches = matches
		return updated, nil
	})
	if err != nil {
		if errors.Is(err, model.ErrUnknownParticipant) || errors.Is(err, model.ErrUnknownMovie) {
			c.logger.Warn("swipe rejected",
				slog.String("room_code", code),
				slog.String("participant_id", participantID),
				slog.String("movie_id", movieID),
				slog.String("error", err.Error()))
		}
		return SwipeResult{}, err
	}

	p, _ := room.Participant(participantID)
	c.publish(room.InviteCode, model.EventSwipeRecorded, progressPayload{
		ParticipantID: participantID,
		MovieID:       movieID,
		Decided:       len(p.Swipes),
		Total:         len(room.Movies),
		CurrentIndex:  room.CurrentMovieIndex,
	})
	for _, m := range newMatches {
		c.logger.Info("match found", slog.String("room_code", room.InviteCode), slog.String("movie_id", m.Movie.ID))
		c.publish(room.InviteCode, model.EventMatchFound, m)
	}

	return SwipeResult{
		NewMatches: newMatches,
		Snapshot:   room.Snapshot(participantID),
	}, nil
}

func (c *Coordinator) Snapshot(ctx context.Context, code, participantID string) (model.RoomSnapshot, error) {
	room, err := c.member(ctx, code, participantID)
	if err != nil {
		return model.RoomSnapshot{}, err
	}
	return room.Snapshot(participantID), nil
}

func (c *Coordinator) Matches(ctx context.Context, code, participantID string) ([]model.Match, error) {
	room, err := c.member(ctx, code, participantID)
	if err != nil {
		return nil, err
	}
	return room.Matches, nil
}

// IsMember is used by transports that hold a participant id from a token.
func (c *Coordinator) IsMember(ctx context.Context, code, participantID string) (bool, error) {
	_, err := c.member(ctx, code, participantID)
	if errors.Is(err, model.ErrUnknownParticipant) {
		return false, nil
	}
	return err == nil, err
}

func (c *Coordinator) ListRooms(ctx context.Context) ([]model.DirectoryEntry, error) {
	if c.directory == nil {
		return []model.DirectoryEntry{}, nil
	}
	entries, err := c.directory.List(ctx)
	if err != nil {
		return nil, errors.Join(usecase_room.ErrInternal, err)
	}
	return entries, nil
}

// Expire sweeps the store and tells connected clients their room is gone.
func (c *Coordinator) Expire(ctx context.Context, now time.Time) ([]string, error) {
	codes, err := c.store.Expire(ctx, now)
	c.closeExpired(ctx, codes)
	return codes, err
}

func (c *Coordinator) RunMaintenance(ctx context.Context, interval time.Duration) {
	c.store.RunExpiry(ctx, interval, func(codes []string) {
		c.closeExpired(ctx, codes)
	})
}

// SyncDirectory republishes every live room, used after a restore.
func (c *Coordinator) SyncDirectory(ctx context.Context) {
	for _, code := range c.store.Codes() {
		c.syncDirectory(ctx, code)
	}
}

func (c *Coordinator) closeExpired(ctx context.Context, codes []string) {
	for _, code := range codes {
		c.syncDirectory(ctx, code)
		c.publish(code, model.EventRoomClosed, closedPayload{Reason: "expired"})
	}
}

func (c *Coordinator) member(ctx context.Context, code, participantID string) (*model.Room, error) {
	room, err := c.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, ok := room.Participant(participantID); !ok {
		return nil, model.ErrUnknownParticipant
	}
	return room, nil
}

func (c *Coordinator) publish(code string, t model.EventType, payload any) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(model.RoomEvent{
		Type:     t,
		RoomCode: code,
		Payload:  payload,
	})
}

// syncDirectory writes the room's current state to the directory under the
// room's lock, so a delayed write never overwrites a later one and a closed
// room is never listed again.
func (c *Coordinator) syncDirectory(ctx context.Context, code string) {
	if c.directory == nil {
		return
	}

	c.store.Observe(code, func(room *model.Room) {
		if room == nil {
			if err := c.directory.Remove(ctx, code); err != nil {
				c.logger.Error("failed to remove room from directory",
					slog.String("room_code", code),
					slog.String("error", err.Error()))
			}
			return
		}
		if err := c.directory.Upsert(ctx, room.DirectoryEntry()); err != nil {
			c.logger.Error("failed to update room directory",
				slog.String("room_code", code),
				slog.String("error", err.Error()))
		}
	})
}

type participantPayload struct {
	ParticipantID     string `json:"participant_id"`
	Name              string `json:"name"`
	ParticipantsCount int    `json:"participants_count"`
}

// Direction stays private to the swiper.
type progressPayload struct {
	ParticipantID string `json:"participant_id"`
	MovieID       string `json:"movie_id"`
	Decided       int    `json:"decided"`
	Total         int    `json:"total"`
	CurrentIndex  int    `json:"current_movie_index"`
}

type closedPayload struct {
	Reason string `json:"reason"`
}
