package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/MeticulousHome/meticulous-go/errors"
)

// zstdMagic is the zstd frame magic number 0xFD2FB528, little-endian on
// the wire. The machine serves shot logs either zstd-compressed or as
// plain JSON depending on firmware version.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// decodePayload turns a shot log body into its JSON document. Bodies
// starting with the zstd frame magic are decompressed first; everything
// else is parsed as-is. Decode failures are invalid, never transient:
// a corrupt payload will not become valid by retrying.
func decodePayload(raw []byte) (map[string]any, error) {
	if bytes.HasPrefix(raw, zstdMagic) {
		plain, err := decompress(raw)
		if err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrDecompressionFailed, err), "api", "decodePayload", "decompress body")
		}
		raw = plain
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "api", "decodePayload", "parse body")
	}
	return doc, nil
}

// decompress inflates a zstd frame. Shot logs are small enough that a
// per-call decoder is cheaper than keeping one alive between requests.
func decompress(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return dec.DecodeAll(raw, nil)
}
