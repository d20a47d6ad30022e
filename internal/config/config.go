package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sudankdk/cee/internal/api"
	"github.com/sudankdk/cee/internal/logger"
)

type DockerConfig struct {
	// Host is a daemon URL or a unix socket path. Empty means DOCKER_HOST.
	Host string `mapstructure:"host"`
}

type SandboxConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	WorkDir        string        `mapstructure:"workdir"`
	CleanupTimeout time.Duration `mapstructure:"cleanup_timeout"`
	ReapInterval   time.Duration `mapstructure:"reap_interval"`
	// ReapMinAge protects containers of in-flight executions from the reaper.
	ReapMinAge time.Duration `mapstructure:"reap_min_age"`
	// MaxOutput is the number of bytes kept per output stream.
	MaxOutput int64 `mapstructure:"max_output"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type Config struct {
	Docker  DockerConfig  `mapstructure:"docker"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Server  api.Config    `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     logger.Config `mapstructure:"log"`
}

// Load reads cee.yaml from the working directory or $HOME/.cee, or the file
// at path when set. A missing default file is not an error. CEE_* variables
// override file values, e.g. CEE_SANDBOX_TIMEOUT=5s.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cee")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cee")
	}

	v.SetEnvPrefix("CEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("docker.host", "CEE_DOCKER_HOST", "DOCKER_DAEMON_SOCKET"); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Sandbox.Timeout <= 0 {
		return nil, fmt.Errorf("sandbox.timeout must be positive, got %s", cfg.Sandbox.Timeout)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("docker.host", "")
	v.SetDefault("sandbox.timeout", 10*time.Second)
	v.SetDefault("sandbox.workdir", "/app")
	v.SetDefault("sandbox.cleanup_timeout", 5*time.Second)
	v.SetDefault("sandbox.reap_interval", time.Minute)
	v.SetDefault("sandbox.reap_min_age", 2*time.Minute)
	v.SetDefault("sandbox.max_output", 1<<20)
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.rate_limit.rps", 5)
	v.SetDefault("server.rate_limit.burst", 10)
	v.SetDefault("server.rate_limit.global_rps", 50)
	v.SetDefault("server.rate_limit.max_concurrent", 0)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".cee", "cee.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
}
