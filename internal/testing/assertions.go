package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
)

// RequireBalance asserts that an account has the expected balance in drops.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, expected drops.Drops) {
	t.Helper()
	actual := env.Balance(acc)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %d drops, got %d drops",
		acc.Name, expected, actual)
}

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, tx.TesSUCCESS, result.Code)
}

// RequireTxFail asserts that a transaction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expected)
	require.Equal(t, expected, result.Code,
		"Expected failure code %s, got %s: %s", expected, result.Code, result.Message)
}

// RequireTxClaimed asserts a tec result with a specific code.
func RequireTxClaimed(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.True(t, result.IsClaimed(),
		"Expected claimed transaction with code %s, got %s", expected, result.Code)
	RequireTxFail(t, result, expected)
}

// RequireSwapExists asserts that a swap record is live.
func RequireSwapExists(t *testing.T, env *TestEnv, id string) {
	t.Helper()
	require.NotNil(t, env.Swap(id), "Expected swap %s to exist", id)
}

// RequireSwapNotExists asserts that no swap record is live at id.
func RequireSwapNotExists(t *testing.T, env *TestEnv, id string) {
	t.Helper()
	require.Nil(t, env.Swap(id), "Expected swap %s to be absent", id)
}

// RequireEventTypes asserts the types of the notifications published so far.
func RequireEventTypes(t *testing.T, env *TestEnv, expected ...events.Type) {
	t.Helper()
	var got []events.Type
	for _, ev := range env.Events() {
		got = append(got, ev.Type)
	}
	if len(expected) == 0 {
		require.Empty(t, got)
		return
	}
	require.Equal(t, expected, got)
}
