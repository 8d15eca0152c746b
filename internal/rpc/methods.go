package rpc

import "github.com/LeJamon/goswapd/internal/rpc/rpc_handlers"

// registerAllMethods registers every RPC method
func (s *Server) registerAllMethods(version string) {
	// Transactions
	s.registry.Register("submit", &rpc_handlers.SubmitMethod{Services: s.services})
	s.registry.Register("tx", &rpc_handlers.TxMethod{Services: s.services})

	// State queries
	s.registry.Register("swap_entry", &rpc_handlers.SwapEntryMethod{Services: s.services})
	s.registry.Register("account_info", &rpc_handlers.AccountInfoMethod{Services: s.services})
	s.registry.Register("derive_swap_id", &rpc_handlers.DeriveSwapIDMethod{})

	// Journal
	s.registry.Register("swap_events", &rpc_handlers.SwapEventsMethod{Services: s.services})

	// Clock
	s.registry.Register("ledger_current", &rpc_handlers.LedgerCurrentMethod{Services: s.services})
	s.registry.Register("ledger_accept", &rpc_handlers.LedgerAcceptMethod{Services: s.services})

	// Server
	s.registry.Register("server_info", &rpc_handlers.ServerInfoMethod{Services: s.services, Version: version})
	s.registry.Register("ping", &rpc_handlers.PingMethod{})
}

// Methods returns the registered method names
func (s *Server) Methods() []string {
	return s.registry.List()
}
