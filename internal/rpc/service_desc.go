// Package rpc exposes the command console and the orbital calculator over
// gRPC. Messages are protobuf well-known types so no code generation is
// needed; the service descriptors below are declared by hand in the shape
// protoc-gen-go-grpc would emit.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ConsoleServiceName   = "missioncontrol.v1.Console"
	TelemetryServiceName = "missioncontrol.v1.Telemetry"

	consoleExecuteMethod = "/" + ConsoleServiceName + "/Execute"
	consoleHistoryMethod = "/" + ConsoleServiceName + "/History"
	consoleSuggestMethod = "/" + ConsoleServiceName + "/Suggest"

	telemetryGroundTrackMethod  = "/" + TelemetryServiceName + "/GroundTrack"
	telemetryVisibilityMethod   = "/" + TelemetryServiceName + "/Visibility"
	telemetryPowerProfileMethod = "/" + TelemetryServiceName + "/PowerProfile"
	telemetryFootprintMethod    = "/" + TelemetryServiceName + "/Footprint"
)

// ConsoleServer is the server API for the Console service.
type ConsoleServer interface {
	Execute(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	History(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Suggest(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// TelemetryServer is the server API for the Telemetry service.
type TelemetryServer interface {
	GroundTrack(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Visibility(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PowerProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Footprint(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterConsoleServer attaches srv to s.
func RegisterConsoleServer(s grpc.ServiceRegistrar, srv ConsoleServer) {
	s.RegisterService(&consoleServiceDesc, srv)
}

// RegisterTelemetryServer attaches srv to s.
func RegisterTelemetryServer(s grpc.ServiceRegistrar, srv TelemetryServer) {
	s.RegisterService(&telemetryServiceDesc, srv)
}

var consoleServiceDesc = grpc.ServiceDesc{
	ServiceName: ConsoleServiceName,
	HandlerType: (*ConsoleServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Execute",
			Handler: unaryHandler(consoleExecuteMethod, func(srv any, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return srv.(ConsoleServer).Execute(ctx, in)
			}),
		},
		{
			MethodName: "History",
			Handler: unaryHandler(consoleHistoryMethod, func(srv any, ctx context.Context, in *emptypb.Empty) (any, error) {
				return srv.(ConsoleServer).History(ctx, in)
			}),
		},
		{
			MethodName: "Suggest",
			Handler: unaryHandler(consoleSuggestMethod, func(srv any, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return srv.(ConsoleServer).Suggest(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "missioncontrol/v1/console.proto",
}

var telemetryServiceDesc = grpc.ServiceDesc{
	ServiceName: TelemetryServiceName,
	HandlerType: (*TelemetryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GroundTrack",
			Handler: unaryHandler(telemetryGroundTrackMethod, func(srv any, ctx context.Context, in *structpb.Struct) (any, error) {
				return srv.(TelemetryServer).GroundTrack(ctx, in)
			}),
		},
		{
			MethodName: "Visibility",
			Handler: unaryHandler(telemetryVisibilityMethod, func(srv any, ctx context.Context, in *structpb.Struct) (any, error) {
				return srv.(TelemetryServer).Visibility(ctx, in)
			}),
		},
		{
			MethodName: "PowerProfile",
			Handler: unaryHandler(telemetryPowerProfileMethod, func(srv any, ctx context.Context, in *structpb.Struct) (any, error) {
				return srv.(TelemetryServer).PowerProfile(ctx, in)
			}),
		},
		{
			MethodName: "Footprint",
			Handler: unaryHandler(telemetryFootprintMethod, func(srv any, ctx context.Context, in *structpb.Struct) (any, error) {
				return srv.(TelemetryServer).Footprint(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "missioncontrol/v1/telemetry.proto",
}

// unaryHandler adapts a typed call into the grpc.MethodDesc handler
// signature, decoding the request into a fresh Req and running the
// interceptor chain when one is installed.
func unaryHandler[Req any, PReq interface {
	*Req
}](fullMethod string, call func(srv any, ctx context.Context, in PReq) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ConsoleClient is the client API for the Console service.
type ConsoleClient struct {
	cc grpc.ClientConnInterface
}

// NewConsoleClient wraps a connection.
func NewConsoleClient(cc grpc.ClientConnInterface) *ConsoleClient {
	return &ConsoleClient{cc: cc}
}

func (c *ConsoleClient) Execute(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, consoleExecuteMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ConsoleClient) History(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, consoleHistoryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ConsoleClient) Suggest(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, consoleSuggestMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// TelemetryClient is the client API for the Telemetry service.
type TelemetryClient struct {
	cc grpc.ClientConnInterface
}

// NewTelemetryClient wraps a connection.
func NewTelemetryClient(cc grpc.ClientConnInterface) *TelemetryClient {
	return &TelemetryClient{cc: cc}
}

func (c *TelemetryClient) GroundTrack(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, telemetryGroundTrackMethod, in, opts...)
}

func (c *TelemetryClient) Visibility(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, telemetryVisibilityMethod, in, opts...)
}

func (c *TelemetryClient) PowerProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, telemetryPowerProfileMethod, in, opts...)
}

func (c *TelemetryClient) Footprint(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, telemetryFootprintMethod, in, opts...)
}

func (c *TelemetryClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
