package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/Lion1208/fastpay/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// profiledRequest registers route on a router wrapped with the given
// middleware chain, fires one request, and returns the pprof labels
// observed inside the handler together with the response code.
func profiledRequest(t *testing.T, method, route, path string, chain ...gin.HandlerFunc) (map[string]string, int) {
	t.Helper()

	r := gin.New()
	r.Use(chain...)

	seen := map[string]string{}
	r.Handle(method, route, func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(key, value string) bool {
			seen[key] = value
			return true
		})
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return seen, w.Code
}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := middleware.DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/healthz")
	assert.Contains(t, cfg.SkipPaths, "/ready")
	assert.Contains(t, cfg.SkipPaths, "/metrics")
	assert.Contains(t, cfg.SkipPathPrefixes, "/swagger")
	assert.Contains(t, cfg.SkipPathPrefixes, "/api-docs")
}

func TestProfilingMiddleware_Disabled(t *testing.T) {
	mw := middleware.ProfilingWithConfig(middleware.ProfilingConfig{Enabled: false})

	labels, code := profiledRequest(t, http.MethodGet, "/api/v1/deposits", "/api/v1/deposits", mw)

	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, labels, "route")
	assert.NotContains(t, labels, "controller")
}

func TestProfilingMiddleware_Enabled(t *testing.T) {
	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())

	labels, code := profiledRequest(t, http.MethodGet, "/api/v1/deposits", "/api/v1/deposits", mw)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/api/v1/deposits", labels["route"])
	assert.Equal(t, "deposits", labels["controller"])
	assert.Equal(t, "GET", labels["method"])
}

func TestProfilingMiddleware_SkipPaths(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		labeled bool
	}{
		{"health_exact", "/health", false},
		{"healthz_exact", "/healthz", false},
		{"ready_exact", "/ready", false},
		{"metrics_exact", "/metrics", false},
		{"swagger_prefix", "/swagger/index.html", false},
		{"api_docs_prefix", "/api-docs/v1", false},
		{"normal_api_path", "/api/v1/deposits", true},
		{"health_subpath", "/health/check", true},
	}

	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, code := profiledRequest(t, http.MethodGet, tt.path, tt.path, mw)

			assert.Equal(t, http.StatusOK, code)
			if tt.labeled {
				assert.Equal(t, tt.path, labels["route"])
			} else {
				assert.NotContains(t, labels, "route")
			}
		})
	}
}

func TestProfilingMiddleware_RoutePattern(t *testing.T) {
	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())

	labels, code := profiledRequest(t, http.MethodGet,
		"/api/v1/deposits/:id", "/api/v1/deposits/dep_abc123", mw)

	assert.Equal(t, http.StatusOK, code)
	// The matched pattern is labeled, never the concrete path.
	assert.Equal(t, "/api/v1/deposits/:id", labels["route"])
	assert.Equal(t, "deposits", labels["controller"])
}

func TestProfilingMiddleware_WithRoleFromJWT(t *testing.T) {
	setRole := func(c *gin.Context) {
		c.Set(middleware.JWTRoleKey, "partner")
		c.Next()
	}
	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())

	labels, code := profiledRequest(t, http.MethodGet, "/api/v1/deposits", "/api/v1/deposits", setRole, mw)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "partner", labels["role"])
}

func TestProfilingMiddleware_HTTPMethods(t *testing.T) {
	methods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodPatch,
	}

	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())
	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			labels, code := profiledRequest(t, method, "/api/v1/withdrawals", "/api/v1/withdrawals", mw)

			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, method, labels["method"])
		})
	}
}

func TestProfilingMiddleware_DefaultMiddleware(t *testing.T) {
	labels, code := profiledRequest(t, http.MethodGet,
		"/api/v1/deposits", "/api/v1/deposits", middleware.Profiling())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "deposits", labels["controller"])
}

func TestProfilingAttributeInjector(t *testing.T) {
	labels, code := profiledRequest(t, http.MethodGet,
		"/api/v1/deposits", "/api/v1/deposits", middleware.ProfilingAttributeInjector())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "deposits", labels["controller"])
}

func TestProfilingMiddleware_CustomSkipPaths(t *testing.T) {
	mw := middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled: true,
		SkipPaths: []string{
			"/custom/health",
			"/custom/status",
		},
		SkipPathPrefixes: []string{
			"/custom/admin",
		},
	})

	tests := []struct {
		path    string
		labeled bool
	}{
		{"/custom/health", false},
		{"/custom/status", false},
		{"/custom/admin/dashboard", false},
		{"/custom/api", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			labels, code := profiledRequest(t, http.MethodGet, tt.path, tt.path, mw)

			assert.Equal(t, http.StatusOK, code)
			if tt.labeled {
				assert.Equal(t, tt.path, labels["route"])
			} else {
				assert.NotContains(t, labels, "route")
			}
		})
	}
}

func TestProfilingMiddleware_ControllerFromRoute(t *testing.T) {
	tests := []struct {
		name       string
		route      string
		path       string
		controller string
	}{
		{"deposits", "/api/v1/deposits", "/api/v1/deposits", "deposits"},
		{"deposits_with_id", "/api/v1/deposits/:id", "/api/v1/deposits/dep_42", "deposits"},
		{"tickets", "/api/v1/tickets", "/api/v1/tickets", "tickets"},
		{"nested_replies", "/api/v1/tickets/:id/replies", "/api/v1/tickets/7/replies", "tickets"},
		{"withdrawals_unversioned", "/api/withdrawals", "/api/withdrawals", "withdrawals"},
	}

	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, code := profiledRequest(t, http.MethodGet, tt.route, tt.path, mw)

			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.controller, labels["controller"])
		})
	}
}

func TestProfilingMiddleware_VersionSegments(t *testing.T) {
	// Version markers of any width are skipped when deriving the controller.
	routes := []string{
		"/api/v1/deposits",
		"/api/v2/deposits",
		"/api/v10/deposits",
		"/api/v100/deposits",
		"/api/deposits",
		"/v1/deposits",
	}

	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())
	for _, route := range routes {
		t.Run(route, func(t *testing.T) {
			labels, code := profiledRequest(t, http.MethodGet, route, route, mw)

			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, "deposits", labels["controller"])
		})
	}
}

func TestProfilingMiddleware_ContextPreserved(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("custom_key", "custom_value")
		c.Next()
	})
	r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	r.GET("/api/v1/deposits", func(c *gin.Context) {
		value, exists := c.Get("custom_key")
		assert.True(t, exists)
		assert.Equal(t, "custom_value", value)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/deposits", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfilingMiddleware_NoRole(t *testing.T) {
	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())

	labels, code := profiledRequest(t, http.MethodGet, "/api/v1/deposits", "/api/v1/deposits", mw)

	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, labels, "role")
}

func TestProfilingMiddleware_RoleWrongType(t *testing.T) {
	setRole := func(c *gin.Context) {
		c.Set(middleware.JWTRoleKey, 12345)
		c.Next()
	}
	mw := middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig())

	labels, code := profiledRequest(t, http.MethodGet, "/api/v1/deposits", "/api/v1/deposits", setRole, mw)

	// Non-string claims are ignored rather than labeled.
	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, labels, "role")
}

func TestProfilingMiddleware_ChainWithOtherMiddleware(t *testing.T) {
	r := gin.New()

	var order []string
	r.Use(func(c *gin.Context) {
		order = append(order, "first")
		c.Next()
		order = append(order, "first_after")
	})
	r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	r.Use(func(c *gin.Context) {
		order = append(order, "third")
		c.Next()
		order = append(order, "third_after")
	})
	r.GET("/api/v1/deposits", func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/deposits", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "third", "handler", "third_after", "first_after"}, order)
}
