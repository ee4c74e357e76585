package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls access to the API documentation endpoints.
type SwaggerConfig struct {
	Enabled     bool     // serve the docs at all
	RequireAuth bool     // require a valid JWT to view the docs
	AllowedIPs  []string // IP allow list, CIDR notation supported; empty allows all
}

// SwaggerProtection guards the Swagger routes. Disabled docs return 404,
// an allow list restricts by source IP, and RequireAuth delegates to the
// given JWT middleware. The checks stack.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	allowedIPs, allowedNets := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "API documentation is not available",
			})
			return
		}

		if len(cfg.AllowedIPs) > 0 {
			clientIP := getClientIP(c)
			if !isIPAllowed(clientIP, allowedIPs, allowedNets) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":   "forbidden",
					"message": "Access to API documentation is restricted",
				})
				return
			}
		}

		if cfg.RequireAuth && jwtMiddleware != nil {
			jwtMiddleware(c)
			if c.IsAborted() {
				return
			}
		}

		c.Next()
	}
}

// parseAllowList splits the configured entries into single IPs and CIDR
// networks. Malformed entries are ignored.
func parseAllowList(entries []string) ([]net.IP, []*net.IPNet) {
	var ips []net.IP
	var nets []*net.IPNet
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			_, network, err := net.ParseCIDR(entry)
			if err == nil {
				nets = append(nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}
	return ips, nets
}

// getClientIP resolves the caller's IP, trusting gin's proxy handling
// first and falling back to the raw remote address.
func getClientIP(c *gin.Context) net.IP {
	if clientIP := c.ClientIP(); clientIP != "" {
		if ip := net.ParseIP(clientIP); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}

	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}

	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}

	return false
}
