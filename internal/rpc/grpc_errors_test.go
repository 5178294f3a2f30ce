package rpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/mission-control/command"
	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/fleet"
)

func TestToStatusError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		code    codes.Code
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "status passthrough", err: status.Error(codes.PermissionDenied, "denied"), code: codes.PermissionDenied},
		{name: "satellite not found", err: fmt.Errorf("%w: %q", fleet.ErrSatelliteNotFound, "X"), code: codes.NotFound},
		{name: "unknown command", err: command.ErrUnknownCommand, code: codes.NotFound},
		{name: "geometry", err: fmt.Errorf("%w: altitude", core.ErrInvalidGeometry), code: codes.InvalidArgument},
		{name: "bad request", err: fmt.Errorf("%w: field", errBadRequest), code: codes.InvalidArgument},
		{name: "transition", err: fleet.ErrInvalidTransition, code: codes.FailedPrecondition},
		{name: "capability", err: command.ErrUnsupportedCapability, code: codes.FailedPrecondition},
		{name: "already exists", err: fleet.ErrMissionExists, code: codes.AlreadyExists},
		{name: "canceled", err: fmt.Errorf("wait: %w", context.Canceled), code: codes.Canceled},
		{name: "fallback", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ToStatusError(tc.err)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("ToStatusError(nil) = %v, want nil", got)
				}
				return
			}
			if code := status.Code(got); code != tc.code {
				t.Fatalf("code = %v, want %v (err %v)", code, tc.code, got)
			}
		})
	}
}
