package entry

import (
	"errors"

	"github.com/LeJamon/goswapd/internal/core/drops"
)

// AccountRoot represents an account in the ledger
type AccountRoot struct {
	Account  [20]byte    `codec:"account"`
	Balance  drops.Drops `codec:"balance"`
	Sequence uint32      `codec:"sequence"`
}

func (a *AccountRoot) Type() Type {
	return TypeAccountRoot
}

func (a *AccountRoot) Validate() error {
	if a.Account == [20]byte{} {
		return errors.New("account ID is required")
	}
	return nil
}
