package config

import (
	"fmt"
	"time"
)

// Config holds all medtrack configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Sound     SoundConfig     `mapstructure:"sound"`
}

type ServerConfig struct {
	Bind string `mapstructure:"bind" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // empty means store.DefaultDBPath()
}

type SchedulerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required,min=1s"`
	Snooze       time.Duration `mapstructure:"snooze" validate:"required,min=1s"`
}

type SoundConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`     // empty means ~/.medtrack/sound_files
	Command string `mapstructure:"command"` // external player, e.g. "paplay"
}

// Default returns a Config with the built-in defaults: 30s poll, 5m snooze,
// sound on.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37740,
		},
		Scheduler: SchedulerConfig{
			PollInterval: 30 * time.Second,
			Snooze:       5 * time.Minute,
		},
		Sound: SoundConfig{
			Enabled: true,
		},
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
