package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	assert.True(t, limiter.Allow("partner-a"))
	assert.True(t, limiter.Allow("partner-a"))
	assert.True(t, limiter.Allow("partner-a"))
	assert.False(t, limiter.Allow("partner-a"))
}

func TestRateLimiter_WindowReset(t *testing.T) {
	limiter := NewRateLimiter(1, 50*time.Millisecond)

	assert.True(t, limiter.Allow("partner-a"))
	assert.False(t, limiter.Allow("partner-a"))

	time.Sleep(60 * time.Millisecond)

	assert.True(t, limiter.Allow("partner-a"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.False(t, limiter.Allow("10.0.0.2"))
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, limiter.Remaining("partner-a"))

	limiter.Allow("partner-a")
	assert.Equal(t, 4, limiter.Remaining("partner-a"))

	limiter.Allow("partner-a")
	limiter.Allow("partner-a")
	assert.Equal(t, 2, limiter.Remaining("partner-a"))

	// Unknown keys report a full bucket.
	assert.Equal(t, 5, limiter.Remaining("partner-b"))
}

func TestRateLimiter_RemainingAfterWindow(t *testing.T) {
	limiter := NewRateLimiter(2, 50*time.Millisecond)

	limiter.Allow("partner-a")
	limiter.Allow("partner-a")
	assert.Equal(t, 0, limiter.Remaining("partner-a"))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, limiter.Remaining("partner-a"))
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func newRateLimitedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handler)
	router.GET("/v1/deposits", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestRateLimit_AllowsWithinLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)
	router := newRateLimitedRouter(RateLimit(limiter))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/deposits", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	router := newRateLimitedRouter(RateLimit(limiter))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/deposits", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/deposits", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_SetsHeaders(t *testing.T) {
	limiter := NewRateLimiter(10, time.Minute)
	router := newRateLimitedRouter(RateLimit(limiter))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/deposits", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_AuthenticatedKeyIncludesAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, time.Minute)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(JWTAccountIDKey, "acct-partner-1")
		c.Next()
	})
	router.Use(RateLimit(limiter))
	router.GET("/v1/balance", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/balance", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The account-scoped key leaves the bare IP bucket untouched.
	assert.Equal(t, 1, limiter.Remaining("192.0.2.1"))
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, time.Minute)

	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-Api-Key")
	}))
	router.GET("/v1/webhooks/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/v1/webhooks/status", nil)
	req1.Header.Set("X-Api-Key", "key-1")
	router.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/v1/webhooks/status", nil)
	req2.Header.Set("X-Api-Key", "key-1")
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)

	// A different key keeps its own bucket.
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/v1/webhooks/status", nil)
	req3.Header.Set("X-Api-Key", "key-2")
	router.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusOK, w3.Code)
}

func newAuthRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/auth/login", AuthRateLimit(limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestAuthRateLimit_AllowsWithinLimit(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	router := newAuthRouter(limiter)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuthRateLimit_SetsHeaders(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)
	router := newAuthRouter(limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestAuthRateLimit_BlocksOverLimit(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	router := newAuthRouter(limiter)

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	router.ServeHTTP(w1, req1)
	require.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	router.ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Contains(t, w2.Body.String(), "AUTH_RATE_LIMIT_EXCEEDED")
	assert.Contains(t, w2.Body.String(), "Too many authentication attempts")
	assert.Equal(t, "60", w2.Header().Get("Retry-After"))
}

func TestAuthRateLimit_KeyIsolatedFromGlobalLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	router := newAuthRouter(limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Exhausting the auth bucket leaves the bare IP bucket full.
	assert.Equal(t, 1, limiter.Remaining("192.0.2.1"))
}
