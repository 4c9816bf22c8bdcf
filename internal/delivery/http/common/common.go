package http_common

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/moviematch/internal/model"
	service_token "github.com/humanbelnik/moviematch/internal/service/token"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// Status maps a domain error to the HTTP status and client message.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidCodeFormat):
		return http.StatusBadRequest, "invalid room code"
	case errors.Is(err, model.ErrInvalidFilters):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrInvalidName):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrInvalidDirection):
		return http.StatusBadRequest, "direction must be left or right"
	case errors.Is(err, service_token.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, model.ErrUnknownParticipant):
		return http.StatusForbidden, "not a participant of this room"
	case errors.Is(err, model.ErrRoomNotFound):
		return http.StatusNotFound, "room not found, check the code"
	case errors.Is(err, model.ErrUnknownMovie):
		return http.StatusNotFound, "movie is not part of this room"
	case errors.Is(err, model.ErrEmptyCatalog):
		return http.StatusUnprocessableEntity, "no movies match these filters"
	case errors.Is(err, model.ErrCodeSpaceExhausted):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal error"
}

// Abort writes the mapped error response. Server-side failures are logged
// at error level, client mistakes at debug.
func Abort(ctx *gin.Context, logger *slog.Logger, msg string, err error) {
	status, message := Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
	} else {
		logger.Debug(msg, slog.String("error", err.Error()))
	}
	ctx.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}
