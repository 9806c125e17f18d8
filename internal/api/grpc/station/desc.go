package station

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cstation.v1.StationService"

// Method names.
const (
	MethodRunTone       = "RunTone"
	MethodRunMelody     = "RunMelody"
	MethodToggleGuard   = "ToggleGuard"
	MethodFixPresence   = "FixPresence"
	MethodSetFan        = "SetFan"
	MethodSetLight      = "SetLight"
	MethodReportLux     = "ReportLux"
	MethodSetAlarmHour  = "SetAlarmHour"
	MethodSetHourlyBeep = "SetHourlyBeep"
	MethodGetStatus     = "GetStatus"
)

// FullMethod returns the path a client invokes for method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// StationServer is the server API of the station service.
type StationServer interface {
	RunTone(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	RunMelody(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	ToggleGuard(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	FixPresence(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	SetFan(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	SetLight(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	ReportLux(ctx context.Context, req *wrapperspb.DoubleValue) (*emptypb.Empty, error)
	SetAlarmHour(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error)
	SetHourlyBeep(ctx context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterStationServer registers srv on s.
func RegisterStationServer(s grpc.ServiceRegistrar, srv StationServer) {
	s.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRunTone, newString, StationServer.RunTone),
		unary(MethodRunMelody, newString, StationServer.RunMelody),
		unary(MethodToggleGuard, newEmpty, StationServer.ToggleGuard),
		unary(MethodFixPresence, newEmpty, StationServer.FixPresence),
		unary(MethodSetFan, newString, StationServer.SetFan),
		unary(MethodSetLight, newString, StationServer.SetLight),
		unary(MethodReportLux, newDouble, StationServer.ReportLux),
		unary(MethodSetAlarmHour, newInt32, StationServer.SetAlarmHour),
		unary(MethodSetHourlyBeep, newBool, StationServer.SetHourlyBeep),
		unary(MethodGetStatus, newEmpty, StationServer.GetStatus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cstation/v1/station.proto",
}

func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newDouble() *wrapperspb.DoubleValue { return new(wrapperspb.DoubleValue) }
func newInt32() *wrapperspb.Int32Value   { return new(wrapperspb.Int32Value) }
func newBool() *wrapperspb.BoolValue     { return new(wrapperspb.BoolValue) }
func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }

// unary builds a method descriptor that decodes Req, runs the interceptor
// chain and dispatches to call.
func unary[Req proto.Message, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(StationServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	fullMethod := FullMethod(method)

	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := newReq()
			if err := dec(req); err != nil {
				return nil, err
			}

			server, _ := srv.(StationServer)

			if interceptor == nil {
				return call(server, ctx, req)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}

			return interceptor(ctx, req, info, func(ctx context.Context, r any) (any, error) {
				typed, _ := r.(Req)

				return call(server, ctx, typed)
			})
		},
	}
}
