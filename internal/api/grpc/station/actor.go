package station

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ActorMetadataKey carries the "user@host" of the caller.
const ActorMetadataKey = "x-cstation-actor"

// unknownActor is logged when a caller did not identify itself.
const unknownActor = "<unknown>"

// ActorFromContext returns the caller identity sent by the client.
func ActorFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return unknownActor
	}

	if values := md.Get(ActorMetadataKey); len(values) > 0 && values[0] != "" {
		return values[0]
	}

	return unknownActor
}

// LoggingInterceptor logs every call with its actor, duration and status code.
func LoggingInterceptor(log *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)

		kv := []any{
			"method", info.FullMethod,
			"actor", ActorFromContext(ctx),
			"code", status.Code(err).String(),
			"duration", time.Since(started),
		}

		if err != nil {
			log.Warnw("station call failed", append(kv, "error", err)...)
		} else {
			log.Infow("station call", kv...)
		}

		return resp, err
	}
}
