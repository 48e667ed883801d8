package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Line     LineConfig     `yaml:"line"`
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`
}

// LineConfig holds LINE Messaging API credentials.
type LineConfig struct {
	ChannelSecret string        `yaml:"channel_secret" env:"LINE_CHANNEL_SECRET"       env-required:"true"`
	ChannelToken  string        `yaml:"channel_token"  env:"LINE_CHANNEL_ACCESS_TOKEN" env-required:"true"`
	APITimeout    time.Duration `yaml:"api_timeout"    env:"LINE_API_TIMEOUT"          env-default:"5s"`
}

// BotConfig holds command-handling settings.
type BotConfig struct {
	// StateTTL bounds how long an unfinished creation flow is remembered.
	StateTTL time.Duration `yaml:"state_ttl" env:"BOT_STATE_TTL" env-default:"1h"`

	// StateSweepInterval is how often expired flows are purged.
	StateSweepInterval time.Duration `yaml:"state_sweep_interval" env:"BOT_STATE_SWEEP_INTERVAL" env-default:"10m"`

	// TemplatesRaw is a comma-separated list of activity names offered by the
	// template-selection card. Parsed into Templates during validation.
	TemplatesRaw string `yaml:"templates" env:"BOT_TEMPLATES" env-default:"Raid,Dungeon,Boss Run"`

	Templates []string `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
