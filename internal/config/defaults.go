package config

// Defaults returns a Config populated with spec.md section 6's defaults:
// host 0.0.0.0, port 50051, request_timeout_secs 30, challenge_ttl_secs
// 300, rate_limit_per_minute 10. Caps not explicitly defaulted by the
// spec (max_concurrent_streams, max_pending_challenges, max_sessions)
// get conservative in-process values sized for a single-node deployment.
func Defaults() *Config {
	return &Config{
		Host:                 "0.0.0.0",
		Port:                 50051,
		LogLevel:             "info",
		RequestTimeoutSecs:   30,
		MaxConcurrentStreams: 256,
		ChallengeTTLSecs:     300,
		RateLimitPerMinute:   10,
		MaxPendingChallenges: 10000,
		MaxSessions:          100000,
	}
}
