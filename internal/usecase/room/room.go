package usecase_room

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/humanbelnik/moviematch/internal/model"
	service_roomcode "github.com/humanbelnik/moviematch/internal/service/roomcode"
	service_swipe "github.com/humanbelnik/moviematch/internal/service/swipe"
	"github.com/samber/lo"
)

var (
	ErrInternal = errors.New("internal error")
)

const (
	DefaultRetention       = 24 * time.Hour
	DefaultMaxCodeAttempts = 16
	MaxNameLength          = 64
)

//go:generate mockery --name=MovieCatalog --output=./mocks/room/catalog --filename=catalog.go
type MovieCatalog interface {
	Fetch(ctx context.Context, filters model.MovieFilters) ([]model.Movie, error)
}

// RoomRepository is the durable backing store behind the index.
// It is written through on every change and read only by Restore.
//
//go:generate mockery --name=RoomRepository --output=./mocks/room/repository --filename=repository.go
type RoomRepository interface {
	Save(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, code string) error
	LoadAll(ctx context.Context) ([]*model.Room, error)
}

type MatchDetector interface {
	DetectMatches(room *model.Room, now time.Time) (*model.Room, []model.Match)
}

// Published room versions are never modified, readers clone them.
type entry struct {
	mu      sync.Mutex
	room    atomic.Pointer[model.Room]
	removed atomic.Bool
}

type Store struct {
	catalog  MovieCatalog
	repo     RoomRepository
	detector MatchDetector

	mu    sync.RWMutex
	rooms map[string]*entry

	logger          *slog.Logger
	now             func() time.Time
	generate        func() string
	retention       time.Duration
	maxCodeAttempts int
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithRepository(repo RoomRepository) Option {
	return func(s *Store) {
		s.repo = repo
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithCodeGenerator(generate func() string) Option {
	return func(s *Store) {
		s.generate = generate
	}
}

func WithRetention(retention time.Duration) Option {
	return func(s *Store) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

func WithMaxCodeAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxCodeAttempts = n
		}
	}
}

func WithMatchDetector(detector MatchDetector) Option {
	return func(s *Store) {
		s.detector = detector
	}
}

func New(catalog MovieCatalog, opts ...Option) *Store {
	s := &Store{
		catalog:         catalog,
		detector:        service_swipe.New(),
		rooms:           make(map[string]*entry),
		logger:          slog.Default(),
		now:             time.Now,
		generate:        service_roomcode.Generate,
		retention:       DefaultRetention,
		maxCodeAttempts: DefaultMaxCodeAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) Retention() time.Duration {
	return s.retention
}

// CreateRoom is the only path that reaches the catalog. The fetch happens
// before any lock is taken.
func (s *Store) CreateRoom(ctx context.Context, creatorName string, filters model.MovieFilters) (*model.Room, error) {
	name, err := normalizeName(creatorName)
	if err != nil {
		return nil, err
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	movies, err := s.catalog.Fetch(ctx, filters)
	if err != nil {
		if errors.Is(err, model.ErrEmptyCatalog) {
			return nil, model.ErrEmptyCatalog
		}
		return nil, errors.Join(ErrInternal, err)
	}
	movies = lo.UniqBy(lo.Filter(movies, func(m model.Movie, _ int) bool {
		return filters.Matches(m)
	}), func(m model.Movie) string { return m.ID })
	if len(movies) == 0 {
		return nil, model.ErrEmptyCatalog
	}

	now := s.now()
	creator := model.NewParticipant(uuid.NewString(), name, now)
	room := &model.Room{
		ID:           uuid.NewString(),
		CreatedBy:    creator.ID,
		CreatedAt:    now,
		Participants: []model.Participant{creator},
		Movies:       lo.Map(movies, func(m model.Movie, _ int) model.Movie { return m.Clone() }),
		Matches:      []model.Match{},
		Filters:      filters.Clone(),
	}
	room.RecomputeCursor()

	e, err := s.reserve(room)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if err := s.save(ctx, room); err != nil {
		e.removed.Store(true)
		s.unindex(room.InviteCode, e)
		return nil, errors.Join(ErrInternal, err)
	}

	s.logger.Info("room created",
		slog.String("room_code", room.InviteCode),
		slog.Int("movies", len(room.Movies)))

	return room.Clone(), nil
}

// reserve allocates a free code and indexes a locked entry for it.
// Collisions are retried up to maxCodeAttempts.
func (s *Store) reserve(room *model.Room) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= s.maxCodeAttempts; attempt++ {
		code := service_roomcode.Canonicalize(s.generate())
		if !service_roomcode.IsValid(code) {
			return nil, errors.Join(ErrInternal, model.ErrInvalidCodeFormat)
		}
		if _, taken := s.rooms[code]; taken {
			s.logger.Warn("room code collision", slog.String("room_code", code), slog.Int("attempt", attempt))
			continue
		}

		room.InviteCode = code
		e := &entry{}
		e.mu.Lock()
		e.room.Store(room)
		s.rooms[code] = e
		return e, nil
	}

	s.logger.Error("room code space exhausted", slog.Int("attempts", s.maxCodeAttempts))
	return nil, model.ErrCodeSpaceExhausted
}

type JoinResult struct {
	Room        *model.Room
	Participant model.Participant
	// False when participantID already named a member.
	Joined bool
}

// JoinRoom adds a participant to the room. When participantID names a current
// member the call changes nothing and returns that member.
func (s *Store) JoinRoom(ctx context.Context, code, name, participantID string) (JoinResult, error) {
	var res JoinResult

	room, err := s.Mutate(ctx, code, func(room *model.Room) (*model.Room, error) {
		if participantID != "" {
			if p, ok := room.Participant(participantID); ok {
				res.Participant = p
				return nil, nil
			}
		}

		display, err := normalizeName(name)
		if err != nil {
			return nil, err
		}
		p := model.NewParticipant(uuid.NewString(), display, s.now())
		room.Participants = append(room.Participants, p)
		room.RecomputeCursor()

		res.Participant = p
		res.Joined = true
		return room, nil
	})
	if err != nil {
		return JoinResult{}, err
	}

	res.Room = room
	return res, nil
}

type LeaveResult struct {
	Room        *model.Room
	Participant model.Participant
	NewMatches  []model.Match
	// The last participant left, the room is gone.
	Closed bool
}

// LeaveRoom drops the participant. Matches already made stay. The remaining
// members are rescanned, since a movie all of them approved may now be
// unanimous.
func (s *Store) LeaveRoom(ctx context.Context, code, participantID string) (LeaveResult, error) {
	code, e, err := s.lookup(code)
	if err != nil {
		return LeaveResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed.Load() {
		return LeaveResult{}, model.ErrRoomNotFound
	}

	next := e.room.Load().Clone()
	i := next.ParticipantIndex(participantID)
	if i < 0 {
		return LeaveResult{}, model.ErrUnknownParticipant
	}
	left := next.Participants[i]
	next.Participants = slices.Delete(next.Participants, i, i+1)

	if len(next.Participants) == 0 {
		if err := s.delete(ctx, code); err != nil {
			return LeaveResult{}, errors.Join(ErrInternal, err)
		}
		e.removed.Store(true)
		s.unindex(code, e)

		s.logger.Info("room closed", slog.String("room_code", code))
		return LeaveResult{Room: next, Participant: left, NewMatches: []model.Match{}, Closed: true}, nil
	}

	next, matches := s.detector.DetectMatches(next, s.now())
	if err := s.save(ctx, next); err != nil {
		return LeaveResult{}, errors.Join(ErrInternal, err)
	}
	e.room.Store(next)

	return LeaveResult{Room: next.Clone(), Participant: left, NewMatches: matches}, nil
}

// Mutate is the per-room critical section. fn gets a private copy of the
// current version and returns its replacement, or nil to leave the room as it
// is. The replacement is persisted before it is published. On any error the
// room stays untouched.
func (s *Store) Mutate(ctx context.Context, code string, fn func(room *model.Room) (*model.Room, error)) (*model.Room, error) {
	_, e, err := s.lookup(code)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed.Load() {
		return nil, model.ErrRoomNotFound
	}

	current := e.room.Load()
	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	if next == nil {
		return current.Clone(), nil
	}

	if err := s.save(ctx, next); err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	e.room.Store(next)

	return next.Clone(), nil
}

// Get serves the last published version without waiting on writers.
func (s *Store) Get(ctx context.Context, code string) (*model.Room, error) {
	_, e, err := s.lookup(code)
	if err != nil {
		return nil, err
	}
	if e.removed.Load() {
		return nil, model.ErrRoomNotFound
	}
	return e.room.Load().Clone(), nil
}

// Observe calls fn with the current version of the room while holding its
// lock, or with nil once the room is gone. Side effects of fn are ordered
// with the room's mutations.
func (s *Store) Observe(code string, fn func(room *model.Room)) {
	_, e, err := s.lookup(code)
	if err != nil {
		fn(nil)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed.Load() {
		fn(nil)
		return
	}
	fn(e.room.Load().Clone())
}

// Expire removes rooms created more than the retention window before now,
// whatever their activity. Each removal waits for the room's in-flight
// mutation to finish.
func (s *Store) Expire(ctx context.Context, now time.Time) ([]string, error) {
	cutoff := now.Add(-s.retention)

	s.mu.RLock()
	candidates := make(map[string]*entry)
	for code, e := range s.rooms {
		if room := e.room.Load(); room != nil && room.CreatedAt.Before(cutoff) {
			candidates[code] = e
		}
	}
	s.mu.RUnlock()

	var (
		expired []string
		errs    []error
	)
	for code, e := range candidates {
		removed, err := s.expireEntry(ctx, code, e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if removed {
			expired = append(expired, code)
		}
	}
	slices.Sort(expired)

	if len(expired) > 0 {
		s.logger.Info("rooms expired", slog.Int("count", len(expired)))
	}
	if len(errs) > 0 {
		return expired, errors.Join(ErrInternal, errors.Join(errs...))
	}
	return expired, nil
}

func (s *Store) expireEntry(ctx context.Context, code string, e *entry) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed.Load() {
		return false, nil
	}
	if err := s.delete(ctx, code); err != nil {
		s.logger.Error("failed to delete expired room", slog.String("room_code", code), slog.String("error", err.Error()))
		return false, err
	}
	e.removed.Store(true)
	s.unindex(code, e)
	return true, nil
}

// RunExpiry sweeps every interval until ctx is done.
func (s *Store) RunExpiry(ctx context.Context, interval time.Duration, onExpired func(codes []string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			codes, err := s.Expire(ctx, s.now())
			if err != nil {
				s.logger.Error("expiry sweep failed", slog.String("error", err.Error()))
			}
			if len(codes) > 0 && onExpired != nil {
				onExpired(codes)
			}
		}
	}
}

// Restore loads the backing store into an empty index at startup. Rooms past
// retention are dropped from the store instead.
func (s *Store) Restore(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	rooms, err := s.repo.LoadAll(ctx)
	if err != nil {
		return 0, errors.Join(ErrInternal, err)
	}

	cutoff := s.now().Add(-s.retention)
	restored := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range rooms {
		if !service_roomcode.IsValid(room.InviteCode) || len(room.Participants) == 0 {
			s.logger.Warn("skipping malformed stored room", slog.String("room_code", room.InviteCode))
			continue
		}
		if room.CreatedAt.Before(cutoff) {
			if err := s.repo.Delete(ctx, room.InviteCode); err != nil {
				s.logger.Error("failed to drop stale room", slog.String("room_code", room.InviteCode), slog.String("error", err.Error()))
			}
			continue
		}
		if room.Matches == nil {
			room.Matches = []model.Match{}
		}
		e := &entry{}
		e.room.Store(room)
		s.rooms[room.InviteCode] = e
		restored++
	}

	s.logger.Info("rooms restored", slog.Int("count", restored))
	return restored, nil
}

func (s *Store) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.rooms))
	for code, e := range s.rooms {
		if !e.removed.Load() {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes
}

func (s *Store) Len() int {
	return len(s.Codes())
}

func (s *Store) lookup(code string) (string, *entry, error) {
	code, ok := service_roomcode.Parse(code)
	if !ok {
		return "", nil, model.ErrInvalidCodeFormat
	}

	s.mu.RLock()
	e, ok := s.rooms[code]
	s.mu.RUnlock()

	if !ok {
		return "", nil, model.ErrRoomNotFound
	}
	return code, e, nil
}

// unindex drops code only if it still points at e.
func (s *Store) unindex(code string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rooms[code] == e {
		delete(s.rooms, code)
	}
}

func (s *Store) save(ctx context.Context, room *model.Room) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(ctx, room)
}

func (s *Store) delete(ctx context.Context, code string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Delete(ctx, code)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", model.ErrInvalidName
	}
	return name, nil
}
