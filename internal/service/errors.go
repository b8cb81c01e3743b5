package service

import (
	"errors"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/repository"
)

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrDuplicateName            = repository.ErrEventNameExists
	ErrNotFound                 = repository.ErrNotFound
	ErrAlreadyRegistered        = errors.New("participant already registered")
	ErrParticipantNotFound      = errors.New("participant not found")
	ErrInsufficientParticipants = errors.New("at least two participants are required")
	ErrStorageUnavailable       = repository.ErrStorageUnavailable
)
