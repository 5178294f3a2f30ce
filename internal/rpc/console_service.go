package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/signalsfoundry/mission-control/command"
	"github.com/signalsfoundry/mission-control/internal/logging"
)

// ConsoleService runs operator command lines against a shared fleet.
type ConsoleService struct {
	interp *command.Interpreter
	target command.Target
	log    logging.Logger
}

// NewConsoleService binds an interpreter to the target every call runs
// against.
func NewConsoleService(interp *command.Interpreter, target command.Target, log logging.Logger) *ConsoleService {
	if log == nil {
		log = logging.Noop()
	}
	return &ConsoleService{interp: interp, target: target, log: log}
}

// Execute runs one line and returns its terminal record. Command failures
// are reported inside the record, not as RPC errors.
func (s *ConsoleService) Execute(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	line := in.GetValue()
	if strings.TrimSpace(line) == "" {
		return nil, status.Error(codes.InvalidArgument, "command line is required")
	}

	rec, err := s.interp.Execute(ctx, line, s.target)
	if err != nil {
		logging.FromContext(ctx, s.log).Debug(ctx, "command returned error record",
			logging.Uint64("record_id", rec.ID),
			logging.Err(err),
		)
	}
	out, convErr := RecordToStruct(rec)
	if convErr != nil {
		return nil, ToStatusError(convErr)
	}
	return out, nil
}

// History lists every record in submission order.
func (s *ConsoleService) History(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	records := s.interp.History()
	items := make([]*structpb.Value, 0, len(records))
	for _, rec := range records {
		st, err := RecordToStruct(rec)
		if err != nil {
			return nil, ToStatusError(err)
		}
		items = append(items, structpb.NewStructValue(st))
	}
	return &structpb.ListValue{Values: items}, nil
}

// Suggest completes a partial command line.
func (s *ConsoleService) Suggest(_ context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
	list, err := suggestionsToList(s.interp.Suggest(in.GetValue()))
	if err != nil {
		return nil, ToStatusError(err)
	}
	return list, nil
}
