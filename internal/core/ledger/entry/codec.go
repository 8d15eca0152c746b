package entry

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

var (
	// ErrUnknownType is returned when decoding bytes with an unregistered type prefix.
	ErrUnknownType = errors.New("unknown entry type")

	// ErrTypeMismatch is returned when a typed decode finds a different entry.
	ErrTypeMismatch = errors.New("entry type mismatch")

	// ErrTruncated is returned when encoded bytes are shorter than the type prefix.
	ErrTruncated = errors.New("entry data truncated")
)

var mh = newHandle()

func newHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return h
}

// Encode serializes an entry as its big-endian type followed by its msgpack body.
func Encode(e Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", e.Type(), err)
	}
	var body []byte
	if err := codec.NewEncoderBytes(&body, mh).Encode(e); err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	out := make([]byte, 2, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(e.Type()))
	return append(out, body...), nil
}

// Decode parses bytes produced by Encode into a concrete entry.
func Decode(data []byte) (Entry, error) {
	if len(data) < 2 {
		return nil, ErrTruncated
	}
	var e Entry
	switch t := Type(binary.BigEndian.Uint16(data)); t {
	case TypeAccountRoot:
		e = &AccountRoot{}
	case TypeSwap:
		e = &Swap{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	if err := codec.NewDecoderBytes(data[2:], mh).Decode(e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Type(), err)
	}
	return e, nil
}

// DecodeAccountRoot decodes data that must hold an AccountRoot.
func DecodeAccountRoot(data []byte) (*AccountRoot, error) {
	e, err := Decode(data)
	if err != nil {
		return nil, err
	}
	a, ok := e.(*AccountRoot)
	if !ok {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, TypeAccountRoot, e.Type())
	}
	return a, nil
}

// DecodeSwap decodes data that must hold a Swap.
func DecodeSwap(data []byte) (*Swap, error) {
	e, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s, ok := e.(*Swap)
	if !ok {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, TypeSwap, e.Type())
	}
	return s, nil
}
