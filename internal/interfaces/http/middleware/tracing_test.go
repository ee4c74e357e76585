package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// setupTestTracer installs an in-memory recorder as the global tracer
// provider and returns it.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

// newTracedRouter builds a router with the tracing middleware, any extra
// middleware, and a GET /v1/deposits handler replying with the given status.
func newTracedRouter(status int, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{
		Enabled:     true,
		ServiceName: "fastpay-api",
	}))
	for _, mw := range extra {
		router.Use(mw)
	}
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(status, gin.H{"status": http.StatusText(status)})
	})
	return router
}

func doTracedGet(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/deposits", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

// findSpan returns the ended span with the given name or nil.
func findSpan(sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{
		Enabled:     false,
		ServiceName: "fastpay-api",
	}))
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := doTracedGet(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingWithConfig_Enabled(t *testing.T) {
	sr := setupTestTracer(t)

	w := doTracedGet(newTracedRouter(http.StatusOK), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	require.GreaterOrEqual(t, len(sr.Ended()), 1)
	require.NotNil(t, findSpan(sr, "GET /v1/deposits"), "HTTP span not found")
}

func TestTracingWithConfig_WithRequestID(t *testing.T) {
	sr := setupTestTracer(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "fastpay-api"}))
	router.Use(TracingAttributeInjector())
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := doTracedGet(router, map[string]string{"X-Request-ID": "req-dep-settle-123"})
	assert.Equal(t, http.StatusOK, w.Code)

	span := findSpan(sr, "GET /v1/deposits")
	require.NotNil(t, span)

	got, found := spanAttr(span, "request_id")
	require.True(t, found, "request_id attribute not found in span")
	assert.Equal(t, "req-dep-settle-123", got)
}

func TestTracingWithConfig_WithJWTClaims(t *testing.T) {
	sr := setupTestTracer(t)

	claims := func(c *gin.Context) {
		c.Set(JWTAccountIDKey, "acct-partner-1")
		c.Set(JWTCodeKey, "REF123")
		c.Next()
	}

	w := doTracedGet(newTracedRouter(http.StatusOK, claims, TracingAttributeInjector()), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	span := findSpan(sr, "GET /v1/deposits")
	require.NotNil(t, span)

	accountID, found := spanAttr(span, "account_id")
	require.True(t, found, "account_id attribute not found in span")
	assert.Equal(t, "acct-partner-1", accountID)

	code, found := spanAttr(span, "account_code")
	require.True(t, found, "account_code attribute not found in span")
	assert.Equal(t, "REF123", code)
}

func TestSpanErrorMarker_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		description string
	}{
		{"bad request", http.StatusBadRequest, "Client Error"},
		{"unauthorized", http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", http.StatusForbidden, "Forbidden"},
		{"not found", http.StatusNotFound, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			w := doTracedGet(newTracedRouter(tt.status, SpanErrorMarker()), nil)
			assert.Equal(t, tt.status, w.Code)

			span := findSpan(sr, "GET /v1/deposits")
			require.NotNil(t, span)
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.description, span.Status().Description)
		})
	}
}

func TestSpanErrorMarker_ServerError(t *testing.T) {
	sr := setupTestTracer(t)

	w := doTracedGet(newTracedRouter(http.StatusInternalServerError, SpanErrorMarker()), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// otelgin may set the error status before the marker does. The
	// description is therefore not asserted, only the error code.
	span := findSpan(sr, "GET /v1/deposits")
	require.NotNil(t, span)
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker_SuccessResponse(t *testing.T) {
	sr := setupTestTracer(t)

	w := doTracedGet(newTracedRouter(http.StatusOK, SpanErrorMarker()), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	span := findSpan(sr, "GET /v1/deposits")
	require.NotNil(t, span)
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker_WithNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	otel.SetTracerProvider(noop.NewTracerProvider())

	router := gin.New()
	router.Use(SpanErrorMarker())
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error"})
	})

	w := doTracedGet(router, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()

	assert.Equal(t, "fastpay-api", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
}

func TestTracing_DefaultConfig(t *testing.T) {
	sr := setupTestTracer(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Tracing())
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := doTracedGet(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.GreaterOrEqual(t, len(sr.Ended()), 1)
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// No tracer provider set up, so there is no recording span.
	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := doTracedGet(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetRequestID_FromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "ctx-req-42")
		c.Next()
	})
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := doTracedGet(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ctx-req-42")
}

func TestGetRequestID_FromHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := doTracedGet(router, map[string]string{"X-Request-ID": "hdr-req-42"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hdr-req-42")
}

func TestGetRequestID_LongHeader_Truncated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/v1/deposits", func(c *gin.Context) {
		requestID := getRequestID(c)
		c.JSON(http.StatusOK, gin.H{"request_id": requestID, "length": len(requestID)})
	})

	w := doTracedGet(router, map[string]string{
		"X-Request-ID": strings.Repeat("x", 2*MaxRequestIDLength),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"length":128`)
}

func TestGetContextString_FromJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(JWTAccountIDKey, "acct-partner-1")
		c.Next()
	})
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": getContextString(c, JWTAccountIDKey)})
	})

	w := doTracedGet(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "acct-partner-1")
}

func TestGetContextString_Empty(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": getContextString(c, JWTAccountIDKey)})
	})

	w := doTracedGet(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"account_id":""`)
}
