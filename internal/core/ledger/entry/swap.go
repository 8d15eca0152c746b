package entry

import (
	"errors"

	"github.com/LeJamon/goswapd/internal/core/drops"
)

// Swap is a live hash-time-locked escrow. The record owns its custody
// balance: Amount is the principal promised to the redeemer and Deposit is
// the storage deposit taken from the initiator when the record was created.
// Both leave the ledger together when the record is closed.
type Swap struct {
	Initiator   [20]byte    `codec:"initiator"`
	Redeemer    [20]byte    `codec:"redeemer"`
	Commitment  [32]byte    `codec:"commitment"`
	Amount      drops.Drops `codec:"amount"`
	Deposit     drops.Drops `codec:"deposit"`
	ExpiryTick  uint64      `codec:"expiry_tick"`
	CreatedTick uint64      `codec:"created_tick"`
	CreatedTxID [32]byte    `codec:"created_tx"`
}

func (s *Swap) Type() Type {
	return TypeSwap
}

func (s *Swap) Validate() error {
	if s.Initiator == [20]byte{} {
		return errors.New("initiator is required")
	}
	if s.Redeemer == [20]byte{} {
		return errors.New("redeemer is required")
	}
	if s.Initiator == s.Redeemer {
		return errors.New("initiator and redeemer must differ")
	}
	if s.Amount.IsZero() {
		return errors.New("amount must be positive")
	}
	if _, err := s.Custody(); err != nil {
		return err
	}
	return nil
}

// Custody returns the full balance held by the record.
func (s *Swap) Custody() (drops.Drops, error) {
	return s.Amount.Add(s.Deposit)
}
