package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from ~/.medtrack/config.yaml (when present) and
// MEDTRACK_* environment variables, on top of the defaults. Environment
// variables take precedence over the file.
func Load() (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("server.bind", def.Server.Bind)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("scheduler.poll_interval", def.Scheduler.PollInterval)
	v.SetDefault("scheduler.snooze", def.Scheduler.Snooze)
	v.SetDefault("sound.enabled", def.Sound.Enabled)
	v.SetDefault("sound.dir", def.Sound.Dir)
	v.SetDefault("sound.command", def.Sound.Command)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".medtrack"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("MEDTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; anything else is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
