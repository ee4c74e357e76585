package telemetry_test

import (
	"context"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"

	"github.com/Lion1208/fastpay/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectLabels runs the wrapper and returns the pprof labels visible inside
// the callback. Both WithProfilingLabels and WithPprofLabels attach labels
// through the runtime, so they can be read back with pprof.ForLabels.
func collectLabels(t *testing.T, wrap func(context.Context, map[string]string, func(context.Context)), labels map[string]string) map[string]string {
	t.Helper()

	seen := make(map[string]string)
	called := false
	wrap(context.Background(), labels, func(c context.Context) {
		called = true
		pprof.ForLabels(c, func(key, value string) bool {
			seen[key] = value
			return true
		})
	})
	require.True(t, called, "wrapped function was not called")
	return seen
}

func TestWithProfilingLabels_EmptyLabels(t *testing.T) {
	for _, labels := range []map[string]string{nil, {}} {
		seen := collectLabels(t, telemetry.WithProfilingLabels, labels)
		assert.Empty(t, seen)
	}
}

func TestWithProfilingLabels_BasicLabels(t *testing.T) {
	seen := collectLabels(t, telemetry.WithProfilingLabels, map[string]string{
		"controller": "DepositHandler",
		"method":     "GET",
		"route":      "/api/v1/deposits",
	})

	assert.Equal(t, "DepositHandler", seen["controller"])
	assert.Equal(t, "GET", seen["method"])
	assert.Equal(t, "/api/v1/deposits", seen["route"])
}

func TestWithProfilingLabels_SkipsHighCardinalityLabels(t *testing.T) {
	seen := collectLabels(t, telemetry.WithProfilingLabels, map[string]string{
		"controller":     "DepositHandler",
		"account_id":     "acct-123",
		"request_id":     "req-abc",
		"transaction_id": "txn-456",
	})

	assert.Equal(t, "DepositHandler", seen["controller"])
	assert.NotContains(t, seen, "account_id")
	assert.NotContains(t, seen, "request_id")
	assert.NotContains(t, seen, "transaction_id")
}

func TestWithProfilingLabels_TruncatesLongValues(t *testing.T) {
	longValue := strings.Repeat("x", 200)

	seen := collectLabels(t, telemetry.WithProfilingLabels, map[string]string{
		"controller": longValue,
	})

	assert.Len(t, seen["controller"], telemetry.MaxLabelValueLength)
}

func TestWithProfilingLabels_SkipsEmptyValues(t *testing.T) {
	seen := collectLabels(t, telemetry.WithProfilingLabels, map[string]string{
		"controller": "DepositHandler",
		"method":     "",
		"":           "value",
	})

	assert.Equal(t, map[string]string{"controller": "DepositHandler"}, seen)
}

func TestWithPprofLabels_BasicLabels(t *testing.T) {
	seen := collectLabels(t, telemetry.WithPprofLabels, map[string]string{
		"controller": "DepositHandler",
		"method":     "POST",
	})

	assert.Equal(t, "DepositHandler", seen["controller"])
	assert.Equal(t, "POST", seen["method"])
}

func TestWithPprofLabels_EmptyLabels(t *testing.T) {
	for _, labels := range []map[string]string{nil, {}} {
		seen := collectLabels(t, telemetry.WithPprofLabels, labels)
		assert.Empty(t, seen)
	}
}

func TestProfilingScope_Builder(t *testing.T) {
	scope := telemetry.NewProfilingScope(nil)

	scope.WithController("DepositHandler").
		WithRoute("/api/v1/deposits").
		WithMethod("GET").
		WithRole("partner").
		WithOperation("ListDeposits").
		WithRegion("db_query")

	labels := scope.Labels()

	assert.Equal(t, "DepositHandler", labels[telemetry.ProfilingLabelController])
	assert.Equal(t, "/api/v1/deposits", labels[telemetry.ProfilingLabelRoute])
	assert.Equal(t, "GET", labels[telemetry.ProfilingLabelMethod])
	assert.Equal(t, "partner", labels[telemetry.ProfilingLabelRole])
	assert.Equal(t, "ListDeposits", labels[telemetry.ProfilingLabelOperation])
	assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
}

func TestProfilingScope_WithInitialLabels(t *testing.T) {
	scope := telemetry.NewProfilingScope(map[string]string{
		"controller": "WithdrawalHandler",
		"method":     "GET",
	})
	scope.WithRoute("/api/v1/withdrawals")

	labels := scope.Labels()

	assert.Equal(t, "WithdrawalHandler", labels["controller"])
	assert.Equal(t, "GET", labels["method"])
	assert.Equal(t, "/api/v1/withdrawals", labels["route"])
}

func TestProfilingScope_OverwriteLabel(t *testing.T) {
	scope := telemetry.NewProfilingScope(map[string]string{
		"controller": "WithdrawalHandler",
	})
	scope.WithController("TransferHandler")

	assert.Equal(t, "TransferHandler", scope.Labels()["controller"])
}

func TestProfilingScope_LabelsReturnsACopy(t *testing.T) {
	scope := telemetry.NewProfilingScope(nil)
	scope.WithController("DepositHandler")

	labels1 := scope.Labels()
	labels1["controller"] = "Modified"

	assert.Equal(t, "DepositHandler", scope.Labels()["controller"], "original should not be modified")
}

func TestProfilingScope_ImmutableInitialLabels(t *testing.T) {
	initial := map[string]string{
		"controller": "WithdrawalHandler",
	}
	scope := telemetry.NewProfilingScope(initial)

	initial["controller"] = "Modified"

	assert.Equal(t, "WithdrawalHandler", scope.Labels()["controller"],
		"scope should have a copy of initial labels")
}

func TestProfilingScope_Run(t *testing.T) {
	scope := telemetry.NewProfilingScope(nil)
	scope.WithController("TransferHandler").
		WithMethod("POST")

	seen := make(map[string]string)
	scope.Run(context.Background(), func(c context.Context) {
		pprof.ForLabels(c, func(key, value string) bool {
			seen[key] = value
			return true
		})
	})

	assert.Equal(t, "TransferHandler", seen["controller"])
	assert.Equal(t, "POST", seen["method"])
}

func TestProfilingScope_WithCustomLabel(t *testing.T) {
	scope := telemetry.NewProfilingScope(nil)
	scope.WithLabel("processor", "fastdepix")

	assert.Equal(t, "fastdepix", scope.Labels()["processor"])
}

func TestHTTPRequestLabels(t *testing.T) {
	tests := []struct {
		name       string
		controller string
		route      string
		method     string
		role       string
		wantLen    int
	}{
		{"all_fields", "DepositHandler", "/api/v1/deposits", "GET", "partner", 4},
		{"empty_role", "DepositHandler", "/api/v1/deposits", "GET", "", 3},
		{"only_controller", "DepositHandler", "", "", "", 1},
		{"all_empty", "", "", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := telemetry.HTTPRequestLabels(tt.controller, tt.route, tt.method, tt.role)
			assert.Len(t, labels, tt.wantLen)

			if tt.controller != "" {
				assert.Equal(t, tt.controller, labels[telemetry.ProfilingLabelController])
			}
			if tt.route != "" {
				assert.Equal(t, tt.route, labels[telemetry.ProfilingLabelRoute])
			}
			if tt.method != "" {
				assert.Equal(t, tt.method, labels[telemetry.ProfilingLabelMethod])
			}
			if tt.role != "" {
				assert.Equal(t, tt.role, labels[telemetry.ProfilingLabelRole])
			}
		})
	}
}

func TestOperationLabels(t *testing.T) {
	t.Run("operation_only", func(t *testing.T) {
		labels := telemetry.OperationLabels("CreateDeposit", nil)

		assert.Equal(t, "CreateDeposit", labels[telemetry.ProfilingLabelOperation])
		assert.Len(t, labels, 1)
	})

	t.Run("with_extra_labels", func(t *testing.T) {
		labels := telemetry.OperationLabels("CreateDeposit", map[string]string{
			"controller": "DepositHandler",
			"method":     "POST",
		})

		assert.Equal(t, "CreateDeposit", labels[telemetry.ProfilingLabelOperation])
		assert.Equal(t, "DepositHandler", labels["controller"])
		assert.Equal(t, "POST", labels["method"])
		assert.Len(t, labels, 3)
	})
}

func TestRegionLabels(t *testing.T) {
	t.Run("region_only", func(t *testing.T) {
		labels := telemetry.RegionLabels("db_query", nil)

		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
		assert.Len(t, labels, 1)
	})

	t.Run("with_extra_labels", func(t *testing.T) {
		labels := telemetry.RegionLabels("db_query", map[string]string{
			"operation": "ListPendingDeposits",
			"table":     "transactions",
		})

		assert.Equal(t, "db_query", labels[telemetry.ProfilingLabelRegion])
		assert.Equal(t, "ListPendingDeposits", labels["operation"])
		assert.Equal(t, "transactions", labels["table"])
		assert.Len(t, labels, 3)
	})
}

func TestLabelConstants(t *testing.T) {
	assert.Equal(t, "controller", telemetry.ProfilingLabelController)
	assert.Equal(t, "route", telemetry.ProfilingLabelRoute)
	assert.Equal(t, "method", telemetry.ProfilingLabelMethod)
	assert.Equal(t, "role", telemetry.ProfilingLabelRole)
	assert.Equal(t, "operation", telemetry.ProfilingLabelOperation)
	assert.Equal(t, "region", telemetry.ProfilingLabelRegion)
	assert.Equal(t, 128, telemetry.MaxLabelValueLength)
}

func TestHighCardinalityLabels(t *testing.T) {
	highCardinality := []string{
		"account_id",
		"request_id",
		"transaction_id",
		"trace_id",
		"span_id",
		"session_id",
	}

	for _, label := range highCardinality {
		assert.True(t, telemetry.HighCardinalityLabels[label],
			"label %s should be marked as high cardinality", label)
	}
}

func TestLabelKeySanitization(t *testing.T) {
	tests := []struct {
		name     string
		inputKey string
		wantKey  string
	}{
		{"spaces_in_key", "my key", "my_key"},
		{"dashes_in_key", "my-key", "my_key"},
		{"uppercase_in_key", "MyKey", "mykey"},
		{"mixed_case_with_spaces", "My Custom Key", "my_custom_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := collectLabels(t, telemetry.WithProfilingLabels, map[string]string{
				tt.inputKey: "value",
			})
			assert.Equal(t, "value", seen[tt.wantKey])
		})
	}
}

func TestNestedProfilingLabels(t *testing.T) {
	var innerSeen map[string]string

	telemetry.WithProfilingLabels(context.Background(),
		map[string]string{"controller": "DepositHandler"},
		func(outerCtx context.Context) {
			innerSeen = make(map[string]string)
			telemetry.WithProfilingLabels(outerCtx,
				map[string]string{"operation": "QueryDB", "region": "db_query"},
				func(innerCtx context.Context) {
					pprof.ForLabels(innerCtx, func(key, value string) bool {
						innerSeen[key] = value
						return true
					})
				})
		})

	// Inner labels stack on top of the outer ones.
	assert.Equal(t, "DepositHandler", innerSeen["controller"])
	assert.Equal(t, "QueryDB", innerSeen["operation"])
	assert.Equal(t, "db_query", innerSeen["region"])
}

func TestContextPropagation(t *testing.T) {
	type contextKey string
	key := contextKey("request-key")
	ctx := context.WithValue(context.Background(), key, "req-dep-1")

	telemetry.WithProfilingLabels(ctx, map[string]string{"controller": "DepositHandler"},
		func(c context.Context) {
			value := c.Value(key)
			require.NotNil(t, value)
			assert.Equal(t, "req-dep-1", value)
		})
}

func TestConcurrentProfilingLabels(t *testing.T) {
	const goroutines = 10

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			telemetry.WithProfilingLabels(context.Background(), map[string]string{
				"controller": "DepositHandler",
				"region":     "settlement",
			}, func(c context.Context) {})
		}()
	}
	wg.Wait()
}
