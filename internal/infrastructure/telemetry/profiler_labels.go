// Package telemetry provides Pyroscope continuous profiling integration.
package telemetry

import (
	"context"
	"maps"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Label keys used for slicing profiles in the Pyroscope UI.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelRole       = "role"
	ProfilingLabelOperation  = "operation"
	// ProfilingLabelRegion marks code regions such as "db_query" or
	// "external_api".
	ProfilingLabelRegion = "region"
)

// MaxLabelValueLength caps label values to keep profile cardinality bounded.
const MaxLabelValueLength = 128

// HighCardinalityLabels lists keys that sanitizeLabels drops outright.
// Each distinct value creates a new series in Pyroscope, so per-request and
// per-entity identifiers never make it onto a profile. Role is absent on
// purpose, it only takes a handful of values (partner, admin).
//
// Do not modify this map at runtime.
var HighCardinalityLabels = map[string]bool{
	"account_id":     true,
	"request_id":     true,
	"transaction_id": true,
	"trace_id":       true,
	"span_id":        true,
	"session_id":     true,
}

// WithProfilingLabels runs fn with the given labels attached to the profile
// samples collected during the call. The map is copied, the caller may reuse
// it afterwards.
//
//	telemetry.WithProfilingLabels(ctx, map[string]string{
//	    "controller": "deposits",
//	    "operation": "SettleDeposit",
//	}, func(c context.Context) {
//	    settleBatch(c)
//	})
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	labelPairs := copyAndSanitize(labels)
	if len(labelPairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(labelPairs...), fn)
}

// WithPprofLabels behaves like WithProfilingLabels but goes through Go's
// native pprof API, so the labels also show up in standard pprof output
// when the Pyroscope SDK is not collecting.
func WithPprofLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	labelPairs := copyAndSanitize(labels)
	if len(labelPairs) == 0 {
		fn(ctx)
		return
	}
	pprof.Do(ctx, pprof.Labels(labelPairs...), fn)
}

func copyAndSanitize(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	// Copy first so a caller mutating the map concurrently cannot race
	// with sanitization.
	labelsCopy := make(map[string]string, len(labels))
	maps.Copy(labelsCopy, labels)
	return sanitizeLabels(labelsCopy)
}

// ProfilingScope accumulates labels incrementally before running a function
// under them.
type ProfilingScope struct {
	labels map[string]string
}

func NewProfilingScope(labels map[string]string) *ProfilingScope {
	scope := &ProfilingScope{
		labels: make(map[string]string),
	}
	maps.Copy(scope.labels, labels)
	return scope
}

// WithLabel adds a single label to the scope.
func (s *ProfilingScope) WithLabel(key, value string) *ProfilingScope {
	s.labels[key] = value
	return s
}

func (s *ProfilingScope) WithController(controller string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelController, controller)
}

func (s *ProfilingScope) WithRoute(route string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRoute, route)
}

func (s *ProfilingScope) WithMethod(method string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelMethod, method)
}

func (s *ProfilingScope) WithRole(role string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRole, role)
}

func (s *ProfilingScope) WithOperation(operation string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelOperation, operation)
}

func (s *ProfilingScope) WithRegion(region string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelRegion, region)
}

// Labels returns a copy of the accumulated labels.
func (s *ProfilingScope) Labels() map[string]string {
	result := make(map[string]string, len(s.labels))
	maps.Copy(result, s.labels)
	return result
}

// Run executes fn with the accumulated labels.
func (s *ProfilingScope) Run(ctx context.Context, fn func(context.Context)) {
	WithProfilingLabels(ctx, s.labels, fn)
}

// sanitizeLabels turns the map into a deterministic key-value slice. It
// drops empty and high-cardinality entries, truncates long values, and
// normalizes keys to snake_case. High-cardinality keys are skipped silently
// since this runs on hot paths.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" {
			continue
		}
		if HighCardinalityLabels[key] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}

		sanitizedKey := sanitizeLabelKey(key)
		if sanitizedKey == "" {
			continue
		}
		pairs = append(pairs, sanitizedKey, value)
	}

	return pairs
}

// sanitizeLabelKey lowercases the key, maps spaces and dashes to
// underscores, and strips everything that is not [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	result := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			result = append(result, c)
		}
	}
	return string(result)
}

// HTTPRequestLabels builds the standard label set attached to HTTP handler
// profiles. Empty components are omitted.
func HTTPRequestLabels(controller, route, method, role string) map[string]string {
	labels := make(map[string]string, 4)
	if controller != "" {
		labels[ProfilingLabelController] = controller
	}
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	if role != "" {
		labels[ProfilingLabelRole] = role
	}
	return labels
}

// OperationLabels builds labels for a named operation.
func OperationLabels(operation string, extraLabels map[string]string) map[string]string {
	labels := make(map[string]string, len(extraLabels)+1)
	labels[ProfilingLabelOperation] = operation
	maps.Copy(labels, extraLabels)
	return labels
}

// RegionLabels builds labels for a code region.
func RegionLabels(region string, extraLabels map[string]string) map[string]string {
	labels := make(map[string]string, len(extraLabels)+1)
	labels[ProfilingLabelRegion] = region
	maps.Copy(labels, extraLabels)
	return labels
}
