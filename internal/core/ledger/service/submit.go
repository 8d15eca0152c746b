package service

import (
	"context"

	"github.com/LeJamon/goswapd/internal/core/tx"
	"golang.org/x/sync/errgroup"
)

// engineConfig returns the engine configuration for tick.
func (s *Service) engineConfig(tick uint64) tx.EngineConfig {
	return tx.EngineConfig{
		Tick:            tick,
		SwapDeposit:     s.config.SwapDeposit,
		MaxExpiryOffset: s.config.MaxExpiryOffset,
	}
}

// Submit applies env at the current tick. Transactions touching disjoint
// keys run in parallel; overlapping ones are serialized. On success the
// effects are committed as one storage batch before any event is published.
func (s *Service) Submit(ctx context.Context, env *tx.Envelope) tx.ApplyResult {
	s.clock.RLock()
	defer s.clock.RUnlock()

	tick := s.tick.Load()
	if txn, err := env.Decode(); err == nil {
		unlock := s.locks.Lock(txn.Touches())
		defer unlock()
	}

	view := s.newStagedView(ctx)
	engine := tx.NewEngine(view, s.engineConfig(tick), s.logger)
	res := engine.Apply(env)
	if !res.Applied {
		s.rejected.Add(1)
		return res
	}

	if err := view.commit(ctx); err != nil {
		s.logger.Error("commit failed", "tx_hash", hashString(res.TxHash), "err", err)
		s.rejected.Add(1)
		return tx.ApplyResult{
			Result:  tx.TefINTERNAL,
			TxHash:  res.TxHash,
			Message: tx.TefINTERNAL.Message(),
		}
	}
	s.applied.Add(1)
	s.logger.Info("transaction committed",
		"tx_hash", hashString(res.TxHash),
		"tick", tick,
		"affected", len(res.Metadata.AffectedNodes),
	)

	s.publish(ctx, res)
	return res
}

// SubmitBatch applies envs concurrently and returns their results in order.
// Per-key serialization still holds, so the outcome of two envelopes that
// touch the same key depends on which acquires it first.
func (s *Service) SubmitBatch(ctx context.Context, envs []*tx.Envelope) []tx.ApplyResult {
	results := make([]tx.ApplyResult, len(envs))

	var g errgroup.Group
	if s.config.BatchWorkers > 0 {
		g.SetLimit(s.config.BatchWorkers)
	}
	for i, env := range envs {
		g.Go(func() error {
			results[i] = s.Submit(ctx, env)
			return nil
		})
	}
	g.Wait()
	return results
}
