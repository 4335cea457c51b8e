package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	AdminAddr         string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	Workers           int           `mapstructure:"workers" yaml:"workers"`
	ClientsPerWorker  int           `mapstructure:"clients_per_worker" yaml:"clients_per_worker"`
	MaxFrameSize      int           `mapstructure:"max_frame_size" yaml:"max_frame_size"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	AcceptRate        float64       `mapstructure:"accept_rate" yaml:"accept_rate"`
	AcceptBurst       int           `mapstructure:"accept_burst" yaml:"accept_burst"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile           string        `mapstructure:"log_file" yaml:"log_file"`
}

// Default returns configuration with reasonable starter defaults.
// Workers == 0 means one worker per available core minus the acceptor's.
func Default() Config {
	return Config{
		Addr:              ":8000",
		AdminAddr:         ":8001",
		Workers:           0,
		ClientsPerWorker:  100,
		MaxFrameSize:      0,
		WriteTimeout:      0,
		AcceptRate:        0,
		AcceptBurst:       1,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.ClientsPerWorker != 0 {
		c.ClientsPerWorker = other.ClientsPerWorker
	}
	if other.MaxFrameSize != 0 {
		c.MaxFrameSize = other.MaxFrameSize
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.AcceptRate != 0 {
		c.AcceptRate = other.AcceptRate
	}
	if other.AcceptBurst != 0 {
		c.AcceptBurst = other.AcceptBurst
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
}
