package station

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TestActorFromContext reads the caller identity from incoming metadata.
func TestActorFromContext(t *testing.T) {
	t.Parallel()

	require.Equal(t, unknownActor, ActorFromContext(context.Background()))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(ActorMetadataKey, "oleg@kitchen"))
	require.Equal(t, "oleg@kitchen", ActorFromContext(ctx))

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs(ActorMetadataKey, ""))
	require.Equal(t, unknownActor, ActorFromContext(ctx))
}

// TestLoggingInterceptor logs successes at info and failures at warn.
func TestLoggingInterceptor(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := LoggingInterceptor(zap.New(core).Sugar())
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodToggleGuard)}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(ActorMetadataKey, "oleg@kitchen"))

	resp, err := interceptor(ctx, nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	_, err = interceptor(ctx, nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unavailable, "stopped")
	})
	require.Equal(t, codes.Unavailable, status.Code(err))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, "oleg@kitchen", entries[0].ContextMap()["actor"])
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, "Unavailable", entries[1].ContextMap()["code"])
}
