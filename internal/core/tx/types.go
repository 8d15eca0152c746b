package tx

import "fmt"

// Type identifies a transaction type
type Type uint16

// Transaction types
const (
	TypeInvalid           Type = 0
	TypeSwapInitiate      Type = 1
	TypeSwapRedeem        Type = 2
	TypeSwapRefund        Type = 3
	TypeSwapInstantRefund Type = 4
)

var typeNames = map[Type]string{
	TypeSwapInitiate:      "SwapInitiate",
	TypeSwapRedeem:        "SwapRedeem",
	TypeSwapRefund:        "SwapRefund",
	TypeSwapInstantRefund: "SwapInstantRefund",
}

// String returns the TransactionType name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the Type for a TransactionType name
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeInvalid, false
}
