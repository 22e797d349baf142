package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLocationNotSet  = errors.New("location not selected")
	ErrScheduleNotSet  = errors.New("schedule not set")
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrCatalogStale    = errors.New("room catalog not loaded for current inputs")
	ErrRoomTypeUnknown = errors.New("unknown room type")
	ErrNoAvailability  = errors.New("no availability for room type")
	ErrFetchSuperseded = errors.New("fetch superseded by newer inputs")
	ErrRateLimited     = errors.New("rate limited")
)
