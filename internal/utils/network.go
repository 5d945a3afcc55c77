package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIP extracts the real client address for request enrichment.
//
// Priority order:
//  1. X-Real-IP (set by reverse proxies)
//  2. First public entry of X-Forwarded-For
//  3. Gin's ClientIP() for direct connections
func ClientIP(c *gin.Context) string {
	realIP := strings.TrimSpace(c.Request.Header.Get("X-Real-IP"))
	if realIP != "" && isValidIP(realIP) && !isPrivateIP(net.ParseIP(realIP)) {
		return realIP
	}

	// X-Forwarded-For lists client, proxy1, proxy2; the first public hop wins
	forwarded := c.Request.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for _, hop := range hops {
			candidate := strings.TrimSpace(hop)
			if isValidIP(candidate) && !isPrivateIP(net.ParseIP(candidate)) && !isLoopback(candidate) {
				return candidate
			}
		}
		// All hops private: the first one is still the closest to the client
		first := strings.TrimSpace(hops[0])
		if isValidIP(first) {
			return first
		}
	}

	return c.ClientIP()
}

// UserAgent extracts the User-Agent header, never empty
func UserAgent(c *gin.Context) string {
	ua := c.Request.UserAgent()
	if ua == "" {
		return "Unknown"
	}
	return ua
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

func isLoopback(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" || ip == "localhost"
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	}

	for _, cidr := range privateRanges {
		_, subnet, _ := net.ParseCIDR(cidr)
		if subnet.Contains(ip) {
			return true
		}
	}

	return false
}
