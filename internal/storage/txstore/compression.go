package txstore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

// Stored values start with a format byte and the uncompressed length.
const (
	formatRaw byte = 0
	formatLZ4 byte = 1
)

// ErrCorrupt is returned when a stored value cannot be decompressed.
var ErrCorrupt = errors.New("corrupt archived record")

// compress encodes data as an LZ4 block, or raw when the block would not
// be smaller.
func compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	n := binary.PutUvarint(header[1:], uint64(len(data)))
	header = header[:1+n]
	if len(data) == 0 {
		header[0] = formatRaw
		return header, nil
	}

	block := make([]byte, lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, block, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	// CompressBlock reports 0 for incompressible input.
	if size == 0 || size >= len(data) {
		header[0] = formatRaw
		return append(header, data...), nil
	}
	header[0] = formatLZ4
	return append(header, block[:size]...), nil
}

func decompress(stored []byte) ([]byte, error) {
	if len(stored) < 2 {
		return nil, ErrCorrupt
	}
	length, n := binary.Uvarint(stored[1:])
	if n <= 0 {
		return nil, ErrCorrupt
	}
	body := stored[1+n:]

	switch stored[0] {
	case formatRaw:
		if uint64(len(body)) != length {
			return nil, ErrCorrupt
		}
		return append([]byte(nil), body...), nil
	case formatLZ4:
		out := make([]byte, length)
		size, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(size) != length {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: format %d", ErrCorrupt, stored[0])
	}
}
