package am

import "github.com/teranos/cashngo/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", BackendSQLite, BackendRedis:
	default:
		return errors.Newf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendRedis, c.Storage.Backend)
	}

	if c.Storage.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.New("redis.addr cannot be empty when storage.backend = redis")
	}

	// 0 = fire immediately / no polling
	if c.Storage.DebounceMS < 0 {
		return errors.Newf("storage.debounce_ms must be >= 0, got %d", c.Storage.DebounceMS)
	}
	if c.Storage.PollIntervalMS < 0 {
		return errors.Newf("storage.poll_interval_ms must be >= 0, got %d", c.Storage.PollIntervalMS)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be in 0..65535, got %d", c.Server.Port)
	}

	if c.API.TimeoutSeconds < 0 {
		return errors.Newf("api.timeout_seconds must be >= 0, got %d", c.API.TimeoutSeconds)
	}
	if c.API.RequestsPerSecond < 0 {
		return errors.Newf("api.requests_per_second must be >= 0, got %f", c.API.RequestsPerSecond)
	}

	switch c.Board.IdentityPolicy {
	case "", IdentityPlaceholder, IdentityStrict:
	default:
		return errors.Newf("board.identity_policy must be %q or %q, got %q", IdentityPlaceholder, IdentityStrict, c.Board.IdentityPolicy)
	}
	if c.Board.ResultDelayMS < 0 {
		return errors.Newf("board.result_delay_ms must be >= 0, got %d", c.Board.ResultDelayMS)
	}

	return nil
}
