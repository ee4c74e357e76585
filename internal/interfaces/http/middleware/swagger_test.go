package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := SwaggerConfig{
		Enabled:     false,
		RequireAuth: false,
		AllowedIPs:  []string{},
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestSwaggerProtection_Enabled_NoRestrictions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := SwaggerConfig{
		Enabled:     true,
		RequireAuth: false,
		AllowedIPs:  []string{},
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerProtection_AllowListAllows(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"127.0.0.1"},
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerProtection_AllowListDenies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.1"},
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestSwaggerProtection_CIDRAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.0/8"},
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	req.RemoteAddr = "10.50.100.200:12345"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/swagger/index.html", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSwaggerProtection_RequireAuthDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)

	denyAll := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}

	cfg := SwaggerConfig{
		Enabled:     true,
		RequireAuth: true,
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, denyAll), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSwaggerProtection_RequireAuthAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	allowAll := func(c *gin.Context) {
		c.Set("jwt_account_id", "test-account")
		c.Next()
	}

	cfg := SwaggerConfig{
		Enabled:     true,
		RequireAuth: true,
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, allowAll), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerProtection_StackedChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	allowAll := func(c *gin.Context) {
		c.Set("jwt_account_id", "test-account")
		c.Next()
	}

	cfg := SwaggerConfig{
		Enabled:     true,
		RequireAuth: true,
		AllowedIPs:  []string{"127.0.0.1"},
	}

	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, allowAll), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})

	// Allowed IP plus valid auth passes
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/swagger/index.html", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The IP check runs before auth
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/swagger/index.html", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestParseAllowList(t *testing.T) {
	ips, nets := parseAllowList([]string{
		"127.0.0.1",
		"10.0.0.0/8",
		"not-an-ip",
		"300.0.0.0/8",
	})

	assert.Len(t, ips, 1)
	assert.Len(t, nets, 1)
	assert.True(t, ips[0].Equal(net.ParseIP("127.0.0.1")))
	assert.Equal(t, "10.0.0.0/8", nets[0].String())
}

func TestIsIPAllowed(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		allowed []string
		want    bool
	}{
		{name: "exact IP match", ip: "192.168.1.1", allowed: []string{"192.168.1.1"}, want: true},
		{name: "no match", ip: "192.168.1.2", allowed: []string{"192.168.1.1"}, want: false},
		{name: "CIDR match", ip: "10.0.0.5", allowed: []string{"10.0.0.0/8"}, want: true},
		{name: "CIDR no match", ip: "11.0.0.5", allowed: []string{"10.0.0.0/8"}, want: false},
		{name: "localhost IPv4", ip: "127.0.0.1", allowed: []string{"127.0.0.1"}, want: true},
		{name: "IPv6 localhost", ip: "::1", allowed: []string{"::1"}, want: true},
		{name: "mixed list", ip: "10.1.2.3", allowed: []string{"127.0.0.1", "10.0.0.0/8"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowedIPs, allowedNets := parseAllowList(tt.allowed)
			got := isIPAllowed(net.ParseIP(tt.ip), allowedIPs, allowedNets)
			assert.Equal(t, tt.want, got)
		})
	}
}
