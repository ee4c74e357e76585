package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupMockDB opens a gorm handle over sqlmock so callbacks can be
// registered without a real database.
func setupMockDB(t *testing.T) *gorm.DB {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db
}

// setupTracerWithRecorder creates a tracer provider backed by an in-memory
// span recorder.
func setupTracerWithRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, spanRecorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
	assert.True(t, cfg.WithoutVariables)
}

func TestNewDBTracingPlugin(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	assert.NotNil(t, plugin)
	assert.Equal(t, cfg, plugin.config)
}

func TestDBTracingPlugin_RegisterOtelGorm_Disabled(t *testing.T) {
	db := setupMockDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = false

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	assert.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_RegisterOtelGorm_Enabled(t *testing.T) {
	db := setupMockDB(t)

	cfg := DBTracingConfig{
		Enabled:          true,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	assert.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_RegisterOtelGorm_WithFullSQL(t *testing.T) {
	db := setupMockDB(t)

	cfg := DBTracingConfig{
		Enabled:          true,
		LogFullSQL:       true,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: false,
	}

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	assert.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_RegisterOtelGorm_DoubleRegistration(t *testing.T) {
	db := setupMockDB(t)

	cfg := DBTracingConfig{
		Enabled:          true,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	assert.NoError(t, plugin.RegisterOtelGorm(db))

	// Callback names collide on the second pass
	assert.Error(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingCallback_RegisterCallbacks(t *testing.T) {
	db := setupMockDB(t)
	callback := NewDBTracingCallback(200 * time.Millisecond)

	assert.NoError(t, callback.RegisterCallbacks(db))
}

func TestDBTracingCallback_AnnotatesRowsAndTable(t *testing.T) {
	db := setupMockDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "settle-deposit")

	session := db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
	session.Statement.Table = "transactions"
	session.Statement.RowsAffected = 3

	callback := NewDBTracingCallback(200 * time.Millisecond)
	callback.AfterCallback(session)
	span.End()

	spans := spanRecorder.Ended()
	require.Len(t, spans, 1)

	foundRows := false
	foundTable := false
	for _, attr := range spans[0].Attributes() {
		switch attr.Key {
		case "db.rows_affected":
			foundRows = true
			assert.Equal(t, int64(3), attr.Value.AsInt64())
		case "db.sql.table":
			foundTable = true
			assert.Equal(t, "transactions", attr.Value.AsString())
		}
	}
	assert.True(t, foundRows, "db.rows_affected attribute should be present")
	assert.True(t, foundTable, "db.sql.table attribute should be present")
}

func TestDBTracingCallback_SlowQueryEvent(t *testing.T) {
	db := setupMockDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "slow-query-test")
	ctx = WithQueryStartTime(ctx)

	time.Sleep(2 * time.Millisecond)

	session := db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
	session.Statement.Table = "accounts"

	callback := NewDBTracingCallback(1 * time.Nanosecond)
	callback.AfterCallback(session)
	span.End()

	spans := spanRecorder.Ended()
	require.Len(t, spans, 1)

	foundSlow := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "db.slow_query" && attr.Value.AsBool() {
			foundSlow = true
		}
	}
	assert.True(t, foundSlow, "db.slow_query attribute should be set")

	foundEvent := false
	for _, event := range spans[0].Events() {
		if event.Name == "slow_query_warning" {
			foundEvent = true
			for _, attr := range event.Attributes {
				if attr.Key == "duration_ms" {
					assert.GreaterOrEqual(t, attr.Value.AsInt64(), int64(1))
				}
			}
		}
	}
	assert.True(t, foundEvent, "slow_query_warning event should be recorded")
}

func TestDBTracingCallback_RecordNotFoundNotAnError(t *testing.T) {
	db := setupMockDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "not-found-test")

	session := db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
	session.Error = gorm.ErrRecordNotFound

	callback := NewDBTracingCallback(200 * time.Millisecond)
	callback.AfterCallback(session)
	span.End()

	spans := spanRecorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestDBTracingCallback_RealErrorMarksSpan(t *testing.T) {
	db := setupMockDB(t)
	tp, spanRecorder := setupTracerWithRecorder(t)

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "error-test")

	session := db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
	session.Error = gorm.ErrInvalidTransaction

	callback := NewDBTracingCallback(200 * time.Millisecond)
	callback.AfterCallback(session)
	span.End()

	spans := spanRecorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	startTime, ok := ctx.Value(queryStartTimeKey).(time.Time)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), startTime, 1*time.Second)
}

func TestAnnotateSpan_NonRecordingSpan(t *testing.T) {
	db := setupMockDB(t)

	cfg := DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	session := db.Session(&gorm.Session{NewDB: true}).WithContext(context.Background())

	// Must not panic without a recording span
	plugin.annotateSpan(session)
}

func TestAnnotateSpan_NilContext(t *testing.T) {
	db := setupMockDB(t)

	cfg := DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	// Must not panic when the statement carries no context
	plugin.annotateSpan(db)
}

func BenchmarkDBTracingCallback(b *testing.B) {
	mockDB, _, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		b.Fatal(err)
	}

	callback := NewDBTracingCallback(200 * time.Millisecond)
	db = db.WithContext(context.Background())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		callback.AfterCallback(db)
	}
}
