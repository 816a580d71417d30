package service

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrLevelNotFound    = errors.New("level not found")
	ErrInvalidLevel     = errors.New("invalid level")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidTickCount = errors.New("invalid tick count")
)
