package tx

import (
	"errors"
	"fmt"
)

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem, ter.
// Only tesSUCCESS commits state.
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes: the transaction was well formed but conflicts with ledger state
	TecUNFUNDED          Result = 129
	TecNO_TARGET         Result = 138
	TecDUPLICATE         Result = 149
	TecTOO_SOON          Result = 152
	TecINVALID_SECRET    Result = 174
	TecINVALID_INITIATOR Result = 175
	TecINVALID_REDEEMER  Result = 176

	// tef codes: the transaction cannot be applied in its current form
	TefBAD_AUTH      Result = -196
	TefINTERNAL      Result = -192
	TefPAST_SEQ      Result = -190
	TefBAD_SIGNATURE Result = -186

	// tem codes: the transaction is malformed
	TemMALFORMED       Result = -299
	TemBAD_AMOUNT      Result = -298
	TemBAD_EXPIRATION  Result = -296
	TemBAD_SEQUENCE    Result = -283
	TemBAD_SRC_ACCOUNT Result = -281
	TemDST_IS_SRC      Result = -279
	TemINVALID         Result = -277
	TemUNKNOWN         Result = -264
	TemBAD_SECRET      Result = -263

	// ter codes: the transaction may succeed later
	TerNO_ACCOUNT Result = -96
	TerPRE_SEQ    Result = -92
)

var resultNames = map[Result]string{
	TesSUCCESS:           "tesSUCCESS",
	TecUNFUNDED:          "tecUNFUNDED",
	TecNO_TARGET:         "tecNO_TARGET",
	TecDUPLICATE:         "tecDUPLICATE",
	TecTOO_SOON:          "tecTOO_SOON",
	TecINVALID_SECRET:    "tecINVALID_SECRET",
	TecINVALID_INITIATOR: "tecINVALID_INITIATOR",
	TecINVALID_REDEEMER:  "tecINVALID_REDEEMER",
	TefBAD_AUTH:          "tefBAD_AUTH",
	TefINTERNAL:          "tefINTERNAL",
	TefPAST_SEQ:          "tefPAST_SEQ",
	TefBAD_SIGNATURE:     "tefBAD_SIGNATURE",
	TemMALFORMED:         "temMALFORMED",
	TemBAD_AMOUNT:        "temBAD_AMOUNT",
	TemBAD_EXPIRATION:    "temBAD_EXPIRATION",
	TemBAD_SEQUENCE:      "temBAD_SEQUENCE",
	TemBAD_SRC_ACCOUNT:   "temBAD_SRC_ACCOUNT",
	TemDST_IS_SRC:        "temDST_IS_SRC",
	TemINVALID:           "temINVALID",
	TemUNKNOWN:           "temUNKNOWN",
	TemBAD_SECRET:        "temBAD_SECRET",
	TerNO_ACCOUNT:        "terNO_ACCOUNT",
	TerPRE_SEQ:           "terPRE_SEQ",
}

// String returns the string representation of the result
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(r))
}

// ResultFromName returns the result with the given name.
func ResultFromName(name string) (Result, bool) {
	for r, n := range resultNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if the result is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if the result is a tef code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if the result is a tem code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if the result is a ter code
func (r Result) IsTer() bool {
	return r >= -99 && r < 0
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecUNFUNDED:
		return "Insufficient balance to fund the swap and its deposit."
	case TecNO_TARGET:
		return "No active swap at the target address."
	case TecDUPLICATE:
		return "A swap already exists at the derived address."
	case TecTOO_SOON:
		return "The swap has not expired yet."
	case TecINVALID_SECRET:
		return "The secret does not match the commitment."
	case TecINVALID_INITIATOR:
		return "Initiator does not match the swap."
	case TecINVALID_REDEEMER:
		return "Redeemer does not match the swap."
	case TefBAD_AUTH:
		return "A required signature is missing."
	case TefINTERNAL:
		return "Internal error."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	case TefBAD_SIGNATURE:
		return "Invalid signature."
	case TemMALFORMED:
		return "Malformed transaction."
	case TemBAD_AMOUNT:
		return "Can only lock positive amounts."
	case TemBAD_EXPIRATION:
		return "Malformed expiration."
	case TemBAD_SEQUENCE:
		return "Sequence number is required with Account."
	case TemBAD_SRC_ACCOUNT:
		return "Malformed source account."
	case TemDST_IS_SRC:
		return "Redeemer may not be the initiator."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TemUNKNOWN:
		return "Unknown transaction type."
	case TemBAD_SECRET:
		return "Malformed secret or commitment."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	default:
		return r.String()
	}
}

// ResultError is the error form of a non-success Result. It unwraps to the
// sentinel registered for its code, if any.
type ResultError struct {
	Code   Result
	Detail string
}

func (e *ResultError) Error() string {
	if e.Detail != "" {
		return e.Code.String() + ": " + e.Detail
	}
	return e.Code.String() + ": " + e.Code.Message()
}

func (e *ResultError) Unwrap() error {
	return sentinels[e.Code]
}

// Err returns r as an error, or nil for tesSUCCESS.
func (r Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &ResultError{Code: r}
}

// Errorf builds a ResultError with a formatted detail message.
func Errorf(code Result, format string, args ...any) error {
	return &ResultError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// ResultOf extracts the code carried by err. Errors that carry no code
// are reported as fallback.
func ResultOf(err error, fallback Result) Result {
	if err == nil {
		return TesSUCCESS
	}
	var re *ResultError
	if errors.As(err, &re) {
		return re.Code
	}
	return fallback
}

var sentinels = map[Result]error{}

// RegisterSentinel maps a result code to a sentinel error so that
// errors.Is(result.Err(), sentinel) holds. It must be called from init.
func RegisterSentinel(code Result, err error) {
	if _, dup := sentinels[code]; dup {
		panic(fmt.Sprintf("tx: sentinel for %s registered twice", code))
	}
	sentinels[code] = err
}
