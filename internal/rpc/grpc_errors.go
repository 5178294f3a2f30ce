package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/mission-control/command"
	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/fleet"
)

// errBadRequest marks malformed request messages.
var errBadRequest = errors.New("bad request")

// ToStatusError maps domain errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, fleet.ErrSatelliteNotFound),
		errors.Is(err, fleet.ErrMissionNotFound),
		errors.Is(err, command.ErrUnknownCommand):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrInvalidGeometry),
		errors.Is(err, fleet.ErrInvalidSatellite),
		errors.Is(err, fleet.ErrInvalidMission):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, fleet.ErrInvalidTransition),
		errors.Is(err, command.ErrUnsupportedCapability):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, fleet.ErrSatelliteExists),
		errors.Is(err, fleet.ErrMissionExists),
		errors.Is(err, command.ErrDuplicateCommand):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
