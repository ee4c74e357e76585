package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		logger := zap.NewNop()
		ctx := WithContext(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("returns noop when absent", func(t *testing.T) {
		got := FromContext(context.Background())
		assert.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("noop") })
	})
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")
	enriched.Info("hello")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestWithAccountID(t *testing.T) {
	ctx, _ := WithAccountID(context.Background(), zap.NewNop(), "acc-1")
	assert.Equal(t, "acc-1", GetAccountID(ctx))
}

func TestL(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	ctx := WithContext(context.Background(), logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, AccountIDKey, "acc-9")

	L(ctx).Info("settled")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "acc-9", fields["account_id"])
}
