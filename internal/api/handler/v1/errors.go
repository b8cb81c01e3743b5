package v1

import (
	"errors"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/service"
)

// serviceErr maps service sentinels onto HTTP errors. op names the failing
// call for the server log.
func serviceErr(op string, err error, eventName string) *response.Err {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInsufficientParticipants):
		return response.ErrBadRequest(err)
	case errors.Is(err, service.ErrParticipantNotFound):
		return response.ErrNotFound("participant", "event", eventName)
	case errors.Is(err, service.ErrNotFound):
		return response.ErrNotFound("event", "name", eventName)
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrAlreadyRegistered):
		return response.ErrConflict(err)
	default:
		return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
	}
}
