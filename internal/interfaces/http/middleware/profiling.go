// Package middleware provides HTTP middleware for the FastPay API.
package middleware

import (
	"context"
	"strings"

	"github.com/Lion1208/fastpay/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are added to requests.
	Enabled bool
	// SkipPaths are exact paths excluded from labeling, typically probes.
	SkipPaths []string
	// SkipPathPrefixes are path prefixes excluded from labeling.
	SkipPathPrefixes []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled: true,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// Profiling returns profiling middleware with default configuration.
// It attaches Pyroscope labels to the request context so CPU samples
// taken during the request carry the route and role dimensions.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig returns profiling middleware with custom configuration.
// The labels attached per request:
//   - controller: resource name, e.g. "deposits"
//   - route: matched route pattern, e.g. "/api/v1/deposits/:id"
//   - method: HTTP method
//   - role: account role from JWT claims (partner, admin)
//
// All of these are bounded sets, which keeps the profile series count low.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if profilingSkipped(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), extractProfilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingSkipped(cfg ProfilingConfig, path string) bool {
	for _, skip := range cfg.SkipPaths {
		if path == skip {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractProfilingLabels builds the label set for one request. Only the
// matched route pattern is used, never the raw path, so labels stay bounded.
func extractProfilingLabels(c *gin.Context) map[string]string {
	labels := make(map[string]string, 4)

	if method := c.Request.Method; method != "" {
		labels[telemetry.ProfilingLabelMethod] = method
	}

	route := c.FullPath()
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}
	if controller := extractControllerFromRoute(route); controller != "" {
		labels[telemetry.ProfilingLabelController] = controller
	}

	// Set by the JWT middleware when the request is authenticated.
	if role := getContextString(c, JWTRoleKey); role != "" {
		labels[telemetry.ProfilingLabelRole] = role
	}

	return labels
}

// extractControllerFromRoute picks the resource segment out of a route
// pattern. "/api/v1/deposits/:id" yields "deposits".
func extractControllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "", part == "api":
		case isVersionSegment(part):
		case isParamSegment(part):
		default:
			return part
		}
	}
	return ""
}

func isParamSegment(segment string) bool {
	return strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "{")
}

// isVersionSegment reports whether a path segment looks like an API
// version marker such as v1 or v2.
func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}

// ProfilingAttributeInjector is an alias for the default profiling
// middleware meant to sit after JWT authentication in the chain, once
// the role claim is available in the context.
func ProfilingAttributeInjector() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}
