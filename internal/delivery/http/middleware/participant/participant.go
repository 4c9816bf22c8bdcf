package http_participant_middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/moviematch/internal/delivery/http/common"
	service_roomcode "github.com/humanbelnik/moviematch/internal/service/roomcode"
	service_token "github.com/humanbelnik/moviematch/internal/service/token"
)

const (
	Header     = "X-participant-token"
	QueryParam = "token"

	participantKey = "participant_id"
	roomCodeKey    = "room_code"
)

type TokenParser interface {
	Parse(token string) (service_token.Claims, error)
}

type Middleware struct {
	parser TokenParser
	logger *slog.Logger
}

func New(
	parser TokenParser,
) *Middleware {
	return &Middleware{
		parser: parser,
		logger: slog.Default(),
	}
}

func token(ctx *gin.Context) string {
	if t := strings.TrimSpace(ctx.GetHeader(Header)); t != "" {
		return t
	}
	return strings.TrimSpace(ctx.Query(QueryParam))
}

// claims returns the token claims when they were issued for the room in
// the :code path parameter.
func (m *Middleware) claims(ctx *gin.Context) (service_token.Claims, error) {
	c, err := m.parser.Parse(token(ctx))
	if err != nil {
		return service_token.Claims{}, err
	}
	if c.RoomCode != service_roomcode.Canonicalize(ctx.Param("code")) {
		return service_token.Claims{}, fmt.Errorf("%w: issued for another room", service_token.ErrInvalidToken)
	}
	return c, nil
}

func (m *Middleware) ParticipantRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token(ctx) == "" {
			m.logger.Debug(fmt.Sprintf("no %s header", Header))
			ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: fmt.Sprintf("no %s header", Header),
			})
			ctx.Abort()
			return
		}

		c, err := m.claims(ctx)
		if err != nil {
			http_common.Abort(ctx, m.logger, "rejected participant token", err)
			return
		}

		ctx.Set(participantKey, c.ParticipantID)
		ctx.Set(roomCodeKey, c.RoomCode)
		ctx.Next()
	}
}

// ParticipantOptional identifies a returning participant when a valid token
// for this room is present and lets everyone else through anonymously.
func (m *Middleware) ParticipantOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token(ctx) != "" {
			if c, err := m.claims(ctx); err == nil {
				ctx.Set(participantKey, c.ParticipantID)
				ctx.Set(roomCodeKey, c.RoomCode)
			}
		}
		ctx.Next()
	}
}

func ParticipantID(ctx *gin.Context) string {
	return ctx.GetString(participantKey)
}
