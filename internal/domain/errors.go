package domain

import "errors"

var (
	// ErrRoomNotFound is returned when an event references a room absent
	// from the registry.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNotHost is returned when a non-host participant tries to start
	// the game.
	ErrNotHost = errors.New("only the host can start the game")
	// ErrThemeNotFound indicates the question source has no questions for
	// the requested theme.
	ErrThemeNotFound = errors.New("theme not found")
	// ErrRoundClosed is returned for a submission against a round that has
	// already closed.
	ErrRoundClosed = errors.New("round already closed")
	// ErrNotParticipant is returned when an identity acts in a room it
	// never joined.
	ErrNotParticipant = errors.New("participant not found in room")
	// ErrInvalidToken is returned when connection-time verification fails.
	ErrInvalidToken = errors.New("invalid or missing token")
)
