package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxLineLength   int           `mapstructure:"max_line_length" yaml:"max_line_length"`
	AdminAddr       string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	WebSocket       bool          `mapstructure:"websocket" yaml:"websocket"`
	WSRateLimit     int           `mapstructure:"ws_rate_limit" yaml:"ws_rate_limit"`
	DatabasePath    string        `mapstructure:"database_path" yaml:"database_path"`
	NATSURL         string        `mapstructure:"nats_url" yaml:"nats_url"`
	NATSSubject     string        `mapstructure:"nats_subject" yaml:"nats_subject"`
	ResultBuffer    int           `mapstructure:"result_buffer" yaml:"result_buffer"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Host:            "",
		Port:            57521,
		PollTimeout:     10 * time.Second,
		WriteTimeout:    5 * time.Second,
		MaxLineLength:   256,
		AdminAddr:       ":8080",
		WebSocket:       true,
		WSRateLimit:     60,
		DatabasePath:    ":memory:",
		NATSURL:         "",
		NATSSubject:     "wirebattle.matches",
		ResultBuffer:    64,
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
	}
}

// ListenAddr is the TCP address of the battle listener.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Host != "" {
		c.Host = other.Host
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.PollTimeout != 0 {
		c.PollTimeout = other.PollTimeout
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.MaxLineLength != 0 {
		c.MaxLineLength = other.MaxLineLength
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.WSRateLimit != 0 {
		c.WSRateLimit = other.WSRateLimit
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.NATSURL != "" {
		c.NATSURL = other.NATSURL
	}
	if other.NATSSubject != "" {
		c.NATSSubject = other.NATSSubject
	}
	if other.ResultBuffer != 0 {
		c.ResultBuffer = other.ResultBuffer
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.PollTimeout <= 0 {
		errs = append(errs, errors.New("poll_timeout must be positive"))
	}
	if c.MaxLineLength < 16 {
		errs = append(errs, fmt.Errorf("max_line_length %d is too small", c.MaxLineLength))
	}
	if c.ResultBuffer < 0 {
		errs = append(errs, errors.New("result_buffer must not be negative"))
	}
	if c.WSRateLimit < 0 {
		errs = append(errs, errors.New("ws_rate_limit must not be negative"))
	}
	if c.WebSocket && c.AdminAddr == "" {
		errs = append(errs, errors.New("websocket requires admin_addr"))
	}
	return errors.Join(errs...)
}
