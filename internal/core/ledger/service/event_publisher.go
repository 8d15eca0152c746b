package service

import (
	"context"
	"encoding/hex"

	"github.com/LeJamon/goswapd/internal/core/tx"
)

// publish hands the committed transaction's events to the sink. Sink
// failures are logged; the state change stands.
func (s *Service) publish(ctx context.Context, res tx.ApplyResult) {
	for _, ev := range res.Events {
		if err := s.sink.Publish(ctx, ev); err != nil {
			s.logger.Warn("event sink failed",
				"tx_hash", hashString(res.TxHash),
				"swap_id", ev.SwapID,
				"type", string(ev.Type),
				"err", err,
			)
		}
	}
}

func hashString(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
