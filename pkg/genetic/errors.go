package genetic

import "errors"

var (
	ErrInvalidParameters  = errors.New("invalid parameters")
	ErrHorizonTooSmall    = errors.New("slot horizon must contain at least two slots")
	ErrNoRooms            = errors.New("catalog has no rooms")
	ErrNoLecturers        = errors.New("catalog has no lecturers")
	ErrNoSessions         = errors.New("catalog yields no sessions")
	ErrNothingSchedulable = errors.New("no session has both a fitting room and a capable lecturer")
)
