package swap

import (
	"errors"

	"github.com/LeJamon/goswapd/internal/core/tx"
)

// Rejection kinds. A failed transition's error matches one of these with
// errors.Is.
var (
	ErrDuplicateSwap      = errors.New("swap already exists")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidSecret      = errors.New("invalid secret")
	ErrRefundBeforeExpiry = errors.New("refund before expiry")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrRecordNotFound     = errors.New("swap not found")
)

func init() {
	tx.RegisterSentinel(tx.TecDUPLICATE, ErrDuplicateSwap)
	tx.RegisterSentinel(tx.TecUNFUNDED, ErrInsufficientFunds)
	tx.RegisterSentinel(tx.TecINVALID_SECRET, ErrInvalidSecret)
	tx.RegisterSentinel(tx.TecTOO_SOON, ErrRefundBeforeExpiry)
	tx.RegisterSentinel(tx.TecINVALID_INITIATOR, ErrInvalidIdentity)
	tx.RegisterSentinel(tx.TecINVALID_REDEEMER, ErrInvalidIdentity)
	tx.RegisterSentinel(tx.TecNO_TARGET, ErrRecordNotFound)
}
