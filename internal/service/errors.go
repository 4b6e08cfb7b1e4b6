package service

import (
	"errors"
	"fmt"
)

var (
	ErrRejected          = errors.New("action rejected")
	ErrGameNotFound      = errors.New("game not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrAlreadyInGame     = errors.New("player already belongs to another game")
	ErrStaleRound        = errors.New("round no longer current")
	ErrCatalogTooSmall   = errors.New("card catalog too small for game settings")
	ErrInvalidSettings   = errors.New("invalid game settings")
	ErrOracleUnavailable = errors.New("decision oracle unavailable")
	ErrGenerationFailed  = errors.New("media generation failed")
)

// RejectedAction is returned when a player action is not legal in the
// current state. The game is left untouched.
type RejectedAction struct {
	Reason string
}

func (e *RejectedAction) Error() string {
	return "rejected: " + e.Reason
}

func (e *RejectedAction) Unwrap() error {
	return ErrRejected
}

func reject(format string, args ...interface{}) error {
	return &RejectedAction{Reason: fmt.Sprintf(format, args...)}
}

// RejectionReason returns the player-facing reason, or "" when err is
// not a rejection.
func RejectionReason(err error) string {
	var ra *RejectedAction
	if errors.As(err, &ra) {
		return ra.Reason
	}
	return ""
}
