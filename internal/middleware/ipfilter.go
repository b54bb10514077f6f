// SPDX-License-Identifier: MIT
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseCIDRs parses a blocklist. Bare addresses are treated as single hosts.
func ParseCIDRs(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid address %q", entry)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			entry = fmt.Sprintf("%s/%d", entry, bits)
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", entry, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// IPFilterMiddleware rejects clients inside any of the blocked ranges
func IPFilterMiddleware(blocked []*net.IPNet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(blocked) == 0 {
			c.Next()
			return
		}

		ip := net.ParseIP(clientIP(c))
		if ip == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		for _, ipNet := range blocked {
			if ipNet.Contains(ip) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
				return
			}
		}

		c.Next()
	}
}
