package service

import "errors"

var (
	ErrKidNotFound        = errors.New("kid not found")
	ErrVideoNotFound      = errors.New("video not found")
	ErrParentNotFound     = errors.New("parent not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveParent     = errors.New("account is disabled")
	ErrUnplayableSource   = errors.New("only uploaded videos can be played")
	ErrNoProfileSelected  = errors.New("no profile selected")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrStorageDisabled    = errors.New("media storage is not configured")
	ErrEmailDisabled      = errors.New("email delivery is not configured")
)
