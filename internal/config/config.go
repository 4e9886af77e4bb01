package config

import (
	"fmt"
	"time"
)

// Config holds everything the server needs to run.
type Config struct {
	Listen string `validate:"required"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`
	LogFile   string

	ObserverQueueSize int           `validate:"gte=1,lte=65536"`
	WriteTimeout      time.Duration `validate:"gt=0"`
	PacketTTL         time.Duration `validate:"gt=0"`

	SocketIOEnabled bool
	MetricsEnabled  bool
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Listen:            ":8000",
		LogLevel:          "info",
		LogFormat:         "text",
		ObserverQueueSize: 64,
		WriteTimeout:      5 * time.Second,
		PacketTTL:         30 * time.Second,
		SocketIOEnabled:   true,
		MetricsEnabled:    true,
	}
}

// File is the on-disk form. Nil fields were not set by the file.
type File struct {
	Listen            *string `hcl:"listen,optional" yaml:"listen"`
	LogLevel          *string `hcl:"log_level,optional" yaml:"log_level"`
	LogFormat         *string `hcl:"log_format,optional" yaml:"log_format"`
	LogFile           *string `hcl:"log_file,optional" yaml:"log_file"`
	ObserverQueueSize *int    `hcl:"observer_queue_size,optional" yaml:"observer_queue_size"`
	WriteTimeout      *string `hcl:"write_timeout,optional" yaml:"write_timeout"`
	PacketTTL         *string `hcl:"packet_ttl,optional" yaml:"packet_ttl"`
	SocketIOEnabled   *bool   `hcl:"socketio_enabled,optional" yaml:"socketio_enabled"`
	MetricsEnabled    *bool   `hcl:"metrics_enabled,optional" yaml:"metrics_enabled"`
}

// Apply copies every field set in f onto cfg.
func (f *File) Apply(cfg *Config) error {
	if f.Listen != nil {
		cfg.Listen = *f.Listen
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if f.LogFormat != nil {
		cfg.LogFormat = *f.LogFormat
	}
	if f.LogFile != nil {
		cfg.LogFile = *f.LogFile
	}
	if f.ObserverQueueSize != nil {
		cfg.ObserverQueueSize = *f.ObserverQueueSize
	}
	if f.WriteTimeout != nil {
		d, err := time.ParseDuration(*f.WriteTimeout)
		if err != nil {
			return fmt.Errorf("write_timeout: %w", err)
		}
		cfg.WriteTimeout = d
	}
	if f.PacketTTL != nil {
		d, err := time.ParseDuration(*f.PacketTTL)
		if err != nil {
			return fmt.Errorf("packet_ttl: %w", err)
		}
		cfg.PacketTTL = d
	}
	if f.SocketIOEnabled != nil {
		cfg.SocketIOEnabled = *f.SocketIOEnabled
	}
	if f.MetricsEnabled != nil {
		cfg.MetricsEnabled = *f.MetricsEnabled
	}
	return nil
}
