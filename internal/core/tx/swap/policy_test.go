package swap

import (
	"testing"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	initiator := [20]byte{1}
	redeemer := [20]byte{2}
	stranger := [20]byte{3}
	record := &entry.Swap{Initiator: initiator, Redeemer: redeemer, Amount: drops.Drops(1)}

	signedBy := func(ids ...[20]byte) tx.SignerSet {
		s := tx.SignerSet{}
		for _, id := range ids {
			s[id] = struct{}{}
		}
		return s
	}

	tests := []struct {
		name    string
		txType  tx.Type
		signers tx.SignerSet
		claims  Claims
		want    tx.Result
	}{
		{"initiate signed by initiator", tx.TypeSwapInitiate, signedBy(initiator), nil, tx.TesSUCCESS},
		{"initiate unsigned", tx.TypeSwapInitiate, signedBy(), nil, tx.TefBAD_AUTH},
		{"initiate signed by redeemer", tx.TypeSwapInitiate, signedBy(redeemer), nil, tx.TefBAD_AUTH},

		{"redeem unsigned", tx.TypeSwapRedeem, signedBy(), Claims{RoleRedeemer: redeemer}, tx.TesSUCCESS},
		{"redeem by stranger", tx.TypeSwapRedeem, signedBy(stranger), Claims{RoleRedeemer: redeemer}, tx.TesSUCCESS},
		{"redeem wrong redeemer", tx.TypeSwapRedeem, signedBy(), Claims{RoleRedeemer: stranger}, tx.TecINVALID_REDEEMER},
		{"redeem no claim", tx.TypeSwapRedeem, signedBy(), Claims{}, tx.TecINVALID_REDEEMER},

		{"refund unsigned", tx.TypeSwapRefund, signedBy(), Claims{RoleInitiator: initiator}, tx.TesSUCCESS},
		{"refund wrong initiator", tx.TypeSwapRefund, signedBy(initiator), Claims{RoleInitiator: redeemer}, tx.TecINVALID_INITIATOR},

		{"instant refund cosigned", tx.TypeSwapInstantRefund, signedBy(redeemer),
			Claims{RoleInitiator: initiator, RoleRedeemer: redeemer}, tx.TesSUCCESS},
		{"instant refund signed by initiator only", tx.TypeSwapInstantRefund, signedBy(initiator),
			Claims{RoleInitiator: initiator, RoleRedeemer: redeemer}, tx.TefBAD_AUTH},
		{"instant refund wrong initiator", tx.TypeSwapInstantRefund, signedBy(redeemer),
			Claims{RoleInitiator: stranger, RoleRedeemer: redeemer}, tx.TecINVALID_INITIATOR},
		{"instant refund wrong redeemer", tx.TypeSwapInstantRefund, signedBy(stranger),
			Claims{RoleInitiator: initiator, RoleRedeemer: stranger}, tx.TecINVALID_REDEEMER},

		{"unknown transition", tx.TypeInvalid, signedBy(initiator), nil, tx.TemUNKNOWN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.txType, record, tt.signers, tt.claims))
		})
	}
}

func TestPayout(t *testing.T) {
	record := &entry.Swap{Initiator: [20]byte{1}, Redeemer: [20]byte{2}}

	dest, ok := Payout(tx.TypeSwapRedeem, record)
	assert.True(t, ok)
	assert.Equal(t, record.Redeemer, dest)

	for _, typ := range []tx.Type{tx.TypeSwapRefund, tx.TypeSwapInstantRefund} {
		dest, ok := Payout(typ, record)
		assert.True(t, ok)
		assert.Equal(t, record.Initiator, dest, typ.String())
	}

	_, ok = Payout(tx.TypeSwapInitiate, record)
	assert.False(t, ok)
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		result tx.Result
		err    error
	}{
		{tx.TecDUPLICATE, ErrDuplicateSwap},
		{tx.TecUNFUNDED, ErrInsufficientFunds},
		{tx.TecINVALID_SECRET, ErrInvalidSecret},
		{tx.TecTOO_SOON, ErrRefundBeforeExpiry},
		{tx.TecINVALID_INITIATOR, ErrInvalidIdentity},
		{tx.TecINVALID_REDEEMER, ErrInvalidIdentity},
		{tx.TecNO_TARGET, ErrRecordNotFound},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.result.Err(), tt.err, tt.result.String())
	}
}
