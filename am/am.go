package am

// Config represents the CashnGo configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Storage  StorageConfig  `mapstructure:"storage" toml:"storage"`
	Redis    RedisConfig    `mapstructure:"redis" toml:"redis"`
	Server   ServerConfig   `mapstructure:"server" toml:"server"`
	API      APIConfig      `mapstructure:"api" toml:"api"`
	Board    BoardConfig    `mapstructure:"board" toml:"board"`
}

// DatabaseConfig configures the SQLite database file shared by every process
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// StorageConfig configures the persisted store
type StorageConfig struct {
	Backend        string `mapstructure:"backend" toml:"backend"`                   // sqlite (default) or redis
	KeyPrefix      string `mapstructure:"key_prefix" toml:"key_prefix"`             // prepended to every collection key (default: cashngo_)
	DebounceMS     int    `mapstructure:"debounce_ms" toml:"debounce_ms"`           // fsnotify debounce before re-reading changes
	PollIntervalMS int    `mapstructure:"poll_interval_ms" toml:"poll_interval_ms"` // 0 = rely on fsnotify only
}

// RedisConfig configures the redis backend (storage.backend = "redis")
type RedisConfig struct {
	Addr     string `mapstructure:"addr" toml:"addr"`
	Password string `mapstructure:"password" toml:"password"`
	DB       int    `mapstructure:"db" toml:"db"`
	Channel  string `mapstructure:"channel" toml:"channel"` // pub/sub channel carrying changed keys
}

// ServerConfig configures the HTTP/WebSocket server
type ServerConfig struct {
	Port           int      `mapstructure:"port" toml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
}

// APIConfig configures the marketplace API client
type APIConfig struct {
	BaseURL           string  `mapstructure:"base_url" toml:"base_url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second"` // 0 = unlimited
	BlockPrivateIP    bool    `mapstructure:"block_private_ip" toml:"block_private_ip"`
	ConfirmQuiz       bool    `mapstructure:"confirm_quiz" toml:"confirm_quiz"` // confirm unlocks through SubmitQuiz
}

// Identity policies for applications submitted without an applicant
const (
	IdentityPlaceholder = "placeholder"
	IdentityStrict      = "strict"
)

// BoardConfig configures the gig/application workflow
type BoardConfig struct {
	IdentityPolicy string `mapstructure:"identity_policy" toml:"identity_policy"`
	ResultDelayMS  int    `mapstructure:"result_delay_ms" toml:"result_delay_ms"` // pause before reporting quiz/application results
}

// Server port constants
const (
	DefaultServerPort = 8787
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
