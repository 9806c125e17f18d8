package station

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/cstation/internal/domain/automation"
	"github.com/oshokin/cstation/internal/domain/chime"
	"github.com/oshokin/cstation/internal/domain/station"
	"github.com/oshokin/cstation/internal/domain/tone"
)

// Service abstracts the station operations the transport depends on.
type Service interface {
	RunTone(ctx context.Context, cmd string) error
	RunMelody(ctx context.Context, cmd string) error
	ToggleGuard(ctx context.Context) error
	FixPresence(ctx context.Context) error
	SetFan(ctx context.Context, mode automation.Mode) error
	SetLight(ctx context.Context, mode automation.Mode) error
	ReportLux(ctx context.Context, lux float64) error
	SetAlarmHour(ctx context.Context, hour int) error
	SetHourlyBeep(ctx context.Context, on bool) error
	Status(ctx context.Context) (station.Snapshot, error)
}

// Server implements StationServer on top of a Service.
type Server struct {
	// service provides the station operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// RunTone starts, changes or stops a tone.
func (s *Server) RunTone(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return empty(s.service.RunTone(ctx, req.GetValue()))
}

// RunMelody plays a built-in or inline melody.
func (s *Server) RunMelody(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return empty(s.service.RunMelody(ctx, req.GetValue()))
}

// ToggleGuard arms or disarms the guard.
func (s *Server) ToggleGuard(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return empty(s.service.ToggleGuard(ctx))
}

// FixPresence reports presence as if the sensor fired.
func (s *Server) FixPresence(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return empty(s.service.FixPresence(ctx))
}

// SetFan accepts "on", "off" or "auto".
func (s *Server) SetFan(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	mode, err := automation.ParseMode(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return empty(s.service.SetFan(ctx, mode))
}

// SetLight accepts "on", "off" or "auto".
func (s *Server) SetLight(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	mode, err := automation.ParseMode(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return empty(s.service.SetLight(ctx, mode))
}

// ReportLux feeds an ambient light reading.
func (s *Server) ReportLux(ctx context.Context, req *wrapperspb.DoubleValue) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "lux is required")
	}

	return empty(s.service.ReportLux(ctx, req.GetValue()))
}

// SetAlarmHour stores the wake-up hour; a negative hour clears it.
func (s *Server) SetAlarmHour(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "hour is required")
	}

	return empty(s.service.SetAlarmHour(ctx, int(req.GetValue())))
}

// SetHourlyBeep enables or disables the hourly chime.
func (s *Server) SetHourlyBeep(ctx context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	return empty(s.service.SetHourlyBeep(ctx, req.GetValue()))
}

// GetStatus returns the current station snapshot.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.service.Status(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	result, err := structpb.NewStruct(snap.Fields())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return result, nil
}

func empty(err error) (*emptypb.Empty, error) {
	if err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, tone.ErrInvalidCommand),
		errors.Is(err, automation.ErrUnknownMode),
		errors.Is(err, chime.ErrInvalidHour),
		errors.Is(err, station.ErrInvalidLux):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, station.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
