package command

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/mission-control/fleet"
)

var (
	// ErrSatelliteNotFound indicates the referenced ID has no match in the
	// current fleet snapshot. It is the fleet sentinel so callers can check
	// either package.
	ErrSatelliteNotFound = fleet.ErrSatelliteNotFound
	// ErrUnsupportedCapability indicates the satellite type cannot perform
	// the requested mission.
	ErrUnsupportedCapability = errors.New("unsupported capability")
	// ErrUnknownCommand indicates the keyword is not in the registry.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrDuplicateCommand is returned when registering a keyword twice.
	ErrDuplicateCommand = errors.New("command already registered")
)

// Error is a command failure with an operator-facing message. errors.Is
// matches it against its Kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
