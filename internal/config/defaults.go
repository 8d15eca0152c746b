package config

import "github.com/spf13/viper"

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.port", 5005)
	v.SetDefault("server.websocket", true)
	v.SetDefault("server.send_queue_limit", 500)
	v.SetDefault("server.admin", []string{"127.0.0.1"})
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")

	// gRPC defaults
	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.ip", "127.0.0.1")
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("grpc.max_recv_msg_size", 4*1024*1024)
	v.SetDefault("grpc.max_send_msg_size", 4*1024*1024)
	v.SetDefault("grpc.stream_queue_limit", 500)
	v.SetDefault("grpc.shutdown_timeout", "5s")

	// State database defaults
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "./data")
	v.SetDefault("database.cache_size", 4096)

	// Journal is disabled unless a driver is set
	v.SetDefault("journal.driver", "")
	v.SetDefault("journal.path", "journal.db")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.max_open_conns", 0)
	v.SetDefault("journal.default_timeout", "30s")
	v.SetDefault("journal.max_retries", 3)

	// Ledger defaults; swap_deposit is 2 units in drops
	v.SetDefault("ledger.swap_deposit", 2_000_000)
	v.SetDefault("ledger.max_expiry_offset", 1_000_000)
	v.SetDefault("ledger.close_interval", "0s")
	v.SetDefault("ledger.batch_workers", 8)

	// Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Genesis
	v.SetDefault("genesis.tick", 1)
}
