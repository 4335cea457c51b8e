package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "WIRERELAY_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load resolves the relay configuration and reports which file it came from.
// Later sources win: built-in defaults, the YAML file, WIRERELAY_* variables.
// CLI flags are applied afterwards by the caller through UpdateFrom.
// A missing file is seeded with the defaults so operators have something to edit.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()
	configPath := resolveConfigPath(explicitPath)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath)
	setDefaults(v, cfg)

	v.SetEnvPrefix("WIRERELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readOrSeed(v, configPath, cfg, logger); err != nil {
		return cfg, configPath, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	return cfg, configPath, nil
}

// readOrSeed reads path into v. When the file does not exist it writes cfg
// there and carries on with defaults and env; seeding failures only warn.
func readOrSeed(v *viper.Viper, path string, cfg Config, logger *zerolog.Logger) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := writeDefaultConfig(path, cfg); err != nil {
		if logger != nil {
			logger.Warn().Err(err).Str("path", path).Msg("could not seed config file")
		}
		return nil
	}
	if logger != nil {
		logger.Info().Str("path", path).Msg("seeded config file with defaults")
	}
	return nil
}

// setDefaults declares every key; AutomaticEnv only sees keys viper knows about.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("admin_addr", cfg.AdminAddr)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("clients_per_worker", cfg.ClientsPerWorker)
	v.SetDefault("max_frame_size", cfg.MaxFrameSize)
	v.SetDefault("write_timeout", cfg.WriteTimeout)
	v.SetDefault("accept_rate", cfg.AcceptRate)
	v.SetDefault("accept_burst", cfg.AcceptBurst)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
}

// resolveConfigPath prefers the --config flag, then a file named config.yaml in
// $WIRERELAY_CONFIG_DEFAULT_PATH, then one in the working directory.
func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
