package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// GRPCConfig represents the [grpc] section
type GRPCConfig struct {
	// Enabled starts the gRPC listener next to the JSON-RPC one
	Enabled bool `toml:"enabled" mapstructure:"enabled"`

	IP   string `toml:"ip" mapstructure:"ip"`
	Port int    `toml:"port" mapstructure:"port"`

	// MaxRecvMsgSize and MaxSendMsgSize bound single messages, in bytes
	MaxRecvMsgSize int `toml:"max_recv_msg_size" mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize int `toml:"max_send_msg_size" mapstructure:"max_send_msg_size"`

	// StreamQueueLimit is the number of pending notifications per
	// WatchSwaps stream before the stream is ended
	StreamQueueLimit int `toml:"stream_queue_limit" mapstructure:"stream_queue_limit"`

	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Address returns the host:port listen address
func (g *GRPCConfig) Address() string {
	return net.JoinHostPort(g.IP, strconv.Itoa(g.Port))
}

// Validate validates the grpc section. A disabled section is not checked.
func (g *GRPCConfig) Validate() error {
	if !g.Enabled {
		return nil
	}
	if g.Port <= 0 || g.Port > 65535 {
		return fmt.Errorf("invalid port %d", g.Port)
	}
	if g.IP == "" || net.ParseIP(g.IP) == nil {
		return fmt.Errorf("invalid ip %q", g.IP)
	}
	if g.MaxRecvMsgSize <= 0 {
		return fmt.Errorf("max_recv_msg_size must be positive")
	}
	if g.MaxSendMsgSize <= 0 {
		return fmt.Errorf("max_send_msg_size must be positive")
	}
	if g.StreamQueueLimit <= 0 {
		return fmt.Errorf("stream_queue_limit must be positive")
	}
	if g.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative")
	}
	return nil
}
