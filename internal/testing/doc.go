// Package testing provides test infrastructure for swap ledger testing.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: a ledger service on in-memory storage with a manual clock
//   - Account: deterministic test accounts with key pairs
//   - Assertions: helpers for common result and balance checks
//
// Transaction builders live in the swap subpackage.
//
// # Basic Usage
//
//	func TestRedeem(t *testing.T) {
//	    alice := jtx.NewAccount("alice")
//	    bob := jtx.NewAccount("bob")
//	    env := jtx.NewTestEnv(t, alice, bob)
//
//	    secret := swap.NewSecret("s1")
//	    res := env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(100)).Build())
//	    jtx.RequireTxSuccess(t, res)
//
//	    res = env.SubmitUnsigned(swap.Redeem(swap.ID(alice, secret), bob, secret).Build())
//	    jtx.RequireTxSuccess(t, res)
//	}
//
// Accounts passed to NewTestEnv are funded at genesis with DefaultFunding.
package testing
