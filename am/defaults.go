package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "cashngo.db")

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.key_prefix", "cashngo_")
	v.SetDefault("storage.debounce_ms", 50)
	v.SetDefault("storage.poll_interval_ms", 0)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "cashngo:changes")

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{"http://localhost", "https://localhost"})

	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout_seconds", 10)
	v.SetDefault("api.requests_per_second", 5.0)
	v.SetDefault("api.block_private_ip", false) // the default API runs on localhost
	v.SetDefault("api.confirm_quiz", false)

	v.SetDefault("board.identity_policy", IdentityPlaceholder)
	v.SetDefault("board.result_delay_ms", 1500)
}

// BindSensitiveEnvVars binds credentials to explicit environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("redis.password", "CASHNGO_REDIS_PASSWORD", "REDIS_PASSWORD")
}
