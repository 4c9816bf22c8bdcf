package http_room

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/moviematch/internal/delivery/http/common"
	http_participant_middleware "github.com/humanbelnik/moviematch/internal/delivery/http/middleware/participant"
	"github.com/humanbelnik/moviematch/internal/model"
	service_token "github.com/humanbelnik/moviematch/internal/service/token"
	usecase_session "github.com/humanbelnik/moviematch/internal/usecase/session"
)

type Controller struct {
	sessions   *usecase_session.Coordinator
	tokens     *service_token.Service
	middleware *http_participant_middleware.Middleware
	logger     *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	sessions *usecase_session.Coordinator,
	tokens *service_token.Service,
	middleware *http_participant_middleware.Middleware,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		sessions:   sessions,
		tokens:     tokens,
		middleware: middleware,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.GET("", c.list)
		rooms.POST("/:code/participants", c.middleware.ParticipantOptional(), c.join)
	}

	room := router.Group("/rooms/:code", c.middleware.ParticipantRequired())
	{
		room.GET("", c.snapshot)
		room.GET("/matches", c.matches)
		room.PUT("/swipes/:movie_id", c.swipe)
		room.DELETE("/participants/me", c.leave)
	}
}

type CreateRequestDTO struct {
	Name    string             `json:"name" binding:"required"`
	Filters model.MovieFilters `json:"filters"`
}

type SessionResponseDTO struct {
	RoomCode      string             `json:"room_code"`
	ParticipantID string             `json:"participant_id"`
	Token         string             `json:"token"`
	Room          model.RoomSnapshot `json:"room"`
}

func (c *Controller) respondSession(ctx *gin.Context, status int, s usecase_session.Session) {
	token, err := c.tokens.Issue(s.RoomCode, s.Participant.ID)
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to issue token", err)
		return
	}

	ctx.Header(http_participant_middleware.Header, token)
	ctx.JSON(status, SessionResponseDTO{
		RoomCode:      s.RoomCode,
		ParticipantID: s.Participant.ID,
		Token:         token,
		Room:          s.Snapshot,
	})
}

func (c *Controller) create(ctx *gin.Context) {
	var req CreateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "incorrect request",
		})
		return
	}

	s, err := c.sessions.CreateRoom(ctx.Request.Context(), req.Name, req.Filters)
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to create room", err)
		return
	}

	c.logger.Info("room created", slog.String("room_code", s.RoomCode))
	c.respondSession(ctx, http.StatusCreated, s)
}

type RoomsResponseDTO struct {
	Rooms []model.DirectoryEntry `json:"rooms"`
}

func (c *Controller) list(ctx *gin.Context) {
	entries, err := c.sessions.ListRooms(ctx.Request.Context())
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to list rooms", err)
		return
	}

	ctx.JSON(http.StatusOK, RoomsResponseDTO{Rooms: entries})
}

type JoinRequestDTO struct {
	Name string `json:"name" binding:"required"`
}

func (c *Controller) join(ctx *gin.Context) {
	var req JoinRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "incorrect request",
		})
		return
	}

	s, err := c.sessions.JoinRoom(
		ctx.Request.Context(),
		ctx.Param("code"),
		req.Name,
		http_participant_middleware.ParticipantID(ctx),
	)
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to join room", err)
		return
	}

	status := http.StatusOK
	if s.Joined {
		status = http.StatusCreated
	}
	c.respondSession(ctx, status, s)
}

func (c *Controller) snapshot(ctx *gin.Context) {
	s, err := c.sessions.Snapshot(ctx.Request.Context(), ctx.Param("code"), http_participant_middleware.ParticipantID(ctx))
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to load room", err)
		return
	}

	ctx.JSON(http.StatusOK, s)
}

type MatchesResponseDTO struct {
	Matches []model.Match `json:"matches"`
}

func (c *Controller) matches(ctx *gin.Context) {
	matches, err := c.sessions.Matches(ctx.Request.Context(), ctx.Param("code"), http_participant_middleware.ParticipantID(ctx))
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to load matches", err)
		return
	}

	ctx.JSON(http.StatusOK, MatchesResponseDTO{Matches: matches})
}

type SwipeRequestDTO struct {
	Direction model.SwipeDirection `json:"direction" binding:"required"`
}

type SwipeResponseDTO struct {
	NewMatches []model.Match      `json:"new_matches"`
	Room       model.RoomSnapshot `json:"room"`
}

func (c *Controller) swipe(ctx *gin.Context) {
	var req SwipeRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "incorrect request",
		})
		return
	}

	res, err := c.sessions.Swipe(
		ctx.Request.Context(),
		ctx.Param("code"),
		http_participant_middleware.ParticipantID(ctx),
		ctx.Param("movie_id"),
		req.Direction,
	)
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to record swipe", err)
		return
	}

	ctx.JSON(http.StatusOK, SwipeResponseDTO{
		NewMatches: res.NewMatches,
		Room:       res.Snapshot,
	})
}

func (c *Controller) leave(ctx *gin.Context) {
	err := c.sessions.LeaveRoom(ctx.Request.Context(), ctx.Param("code"), http_participant_middleware.ParticipantID(ctx))
	if err != nil {
		http_common.Abort(ctx, c.logger, "failed to leave room", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
