package screens

import (
	"errors"

	"kidsvids/internal/service"
)

const (
	msgNoProfile       = "No profile selected."
	msgNoParent        = "No parent is logged in."
	msgProfileNotFound = "Selected profile not found."
	msgGeneric         = "Something went wrong. Please try again."
)

// errorText turns a failure into the message shown to the user
func errorText(err error) string {
	switch {
	case errors.Is(err, service.ErrKidNotFound):
		return msgProfileNotFound
	case errors.Is(err, service.ErrVideoNotFound):
		return "Video not found."
	case errors.Is(err, service.ErrUnplayableSource):
		return "Only uploaded videos can be played."
	case errors.Is(err, service.ErrParentNotFound), errors.Is(err, service.ErrNotLoggedIn):
		return msgNoParent
	default:
		return msgGeneric
	}
}
