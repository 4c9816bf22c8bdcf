package ws_room

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	http_common "github.com/humanbelnik/moviematch/internal/delivery/http/common"
	http_participant_middleware "github.com/humanbelnik/moviematch/internal/delivery/http/middleware/participant"
	"github.com/humanbelnik/moviematch/internal/model"
	usecase_session "github.com/humanbelnik/moviematch/internal/usecase/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Controller struct {
	hub        *Hub
	sessions   *usecase_session.Coordinator
	middleware *http_participant_middleware.Middleware
	logger     *slog.Logger
}

type ControllerOption func(*Controller)

func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func NewController(
	hub *Hub,
	sessions *usecase_session.Coordinator,
	middleware *http_participant_middleware.Middleware,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		hub:        hub,
		sessions:   sessions,
		middleware: middleware,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:code/ws", c.middleware.ParticipantRequired(), c.roomWS)
}

func (c *Controller) roomWS(ctx *gin.Context) {
	participantID := http_participant_middleware.ParticipantID(ctx)

	snapshot, err := c.sessions.Snapshot(ctx.Request.Context(), ctx.Param("code"), participantID)
	if err != nil {
		http_common.Abort(ctx, c.logger, "websocket rejected", err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade to websocket",
			slog.String("error", err.Error()),
		)
		return
	}

	client := &Client{
		hub:           c.hub,
		conn:          conn,
		send:          make(chan model.RoomEvent, sendBufferSize),
		roomCode:      snapshot.InviteCode,
		participantID: participantID,
	}

	c.hub.Register(client)

	go c.hub.StartClientReading(client)
	go c.hub.StartClientWriting(client)
}
