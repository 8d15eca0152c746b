// Package swap implements hash-time-locked swaps of the native asset.
//
// A swap moves through one lifecycle:
//
//	SwapInitiate       creates the record and locks Amount plus the storage
//	                   deposit from the initiator
//	SwapRedeem         reveals the secret and pays the redeemer
//	SwapRefund         after the expiry tick, pays the initiator back
//	SwapInstantRefund  with the redeemer's signature, pays the initiator
//	                   back at any tick
//
// Every terminal transition destroys the record and releases its whole
// custody balance in the same state table, so a record is paid out exactly
// once. Records live at keylet.Swap(initiator, commitment).
package swap
