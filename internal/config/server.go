package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ServerConfig represents the [server] section
type ServerConfig struct {
	IP   string `toml:"ip" mapstructure:"ip"`
	Port int    `toml:"port" mapstructure:"port"`

	// WebSocket enables the /ws notification stream
	WebSocket bool `toml:"websocket" mapstructure:"websocket"`

	// SendQueueLimit is the number of pending notifications per websocket
	// client before the client is dropped
	SendQueueLimit int `toml:"send_queue_limit" mapstructure:"send_queue_limit"`

	// Admin lists the client IPs allowed to call ledger_accept
	Admin []string `toml:"admin" mapstructure:"admin"`

	ReadTimeout     time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Address returns the host:port listen address
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// Validate validates the server section
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.IP != "" && net.ParseIP(s.IP) == nil {
		return fmt.Errorf("invalid ip %q", s.IP)
	}
	for _, ip := range s.Admin {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("invalid admin ip %q", ip)
		}
	}
	if s.SendQueueLimit <= 0 {
		return fmt.Errorf("send_queue_limit must be positive")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// IsAdmin reports whether ip may call admin methods
func (s *ServerConfig) IsAdmin(ip string) bool {
	for _, a := range s.Admin {
		if a == ip {
			return true
		}
	}
	return false
}
