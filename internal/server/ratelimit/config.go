package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a Config with the default endpoint tiers. Whitelist and
// blacklist are comma-separated IP lists.
func NewConfig(enabled bool, defaultLimit int, defaultWindow, cleanupInterval time.Duration, whitelist, blacklist string) *Config {
	if !enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    defaultLimit,
		DefaultWindow:   defaultWindow,
		CleanupInterval: cleanupInterval,
		Whitelist:       ParseIPList(whitelist),
		Blacklist:       ParseIPList(blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: matching fans out over every candidate
		{Path: "/match/", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/jobs/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 2},

		// Tier 2: writes that enqueue extraction or send email
		{Path: "/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/resumes", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: other writes
		{Path: "/candidates", Method: "POST", Limit: 200, Window: time.Minute, Burst: 20},
		{Path: "/jobs/", Method: "PUT", Limit: 200, Window: time.Minute, Burst: 20},
		{Path: "/candidates/", Method: "PUT", Limit: 200, Window: time.Minute, Burst: 20},
		{Path: "/email-templates", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/email-templates/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},

		// Reads use the default limit; /health is unlimited (see MatchEndpoint).
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
