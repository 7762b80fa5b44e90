// Package cbor encodes and decodes the protocol messages and stored records of this module, by
// wrapping github.com/fxamacker/cbor.
//
// Encoding follows the Core Deterministic Encoding of RFC 8949, so that equal values always
// produce equal bytes; this matters for anything that is hashed or signed. The decoder rejects
// duplicate map keys and indefinite lengths. Protocol messages, which cross a trust boundary, are
// decoded with UnmarshalStrict, which additionally rejects unknown fields; stored records are
// decoded with Unmarshal, which ignores them for forward compatibility.
//
// For more info, see:
//   - https://github.com/fxamacker/cbor
//   - https://tools.ietf.org/html/rfc8949
package cbor

import (
	"io"

	"github.com/fxamacker/cbor/v2" // imports as cbor
)

// Limits on decoded containers. Messages and records in this module are small and flat.
const (
	MaxArrayElements = 1024
	MaxMapPairs      = 64
	MaxNestedLevels  = 8
)

var (
	encOptions = cbor.EncOptions{
		// Core Deterministic Encoding, RFC 8949 section 4.2.1
		IndefLength:   cbor.IndefLengthForbidden,
		ShortestFloat: cbor.ShortestFloat16,
		NaNConvert:    cbor.NaNConvert7e00,
		InfConvert:    cbor.InfConvertFloat16,
		Sort:          cbor.SortCoreDeterministic,

		// Timestamps are encoded as RFC 3339 strings with nanoseconds, without tags
		Time:   cbor.TimeRFC3339Nano,
		TagsMd: cbor.TagsForbidden,
	}

	decOptions = cbor.DecOptions{
		IndefLength:      cbor.IndefLengthForbidden,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: MaxArrayElements,
		MaxMapPairs:      MaxMapPairs,
		MaxNestedLevels:  MaxNestedLevels,
		TagsMd:           cbor.TagsForbidden,
		TimeTag:          cbor.DecTagIgnored,
	}

	encMode    cbor.EncMode
	decMode    cbor.DecMode
	strictMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = encOptions.EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic(err)
	}
	strict := decOptions
	strict.ExtraReturnErrors = cbor.ExtraDecErrorUnknownField
	if strictMode, err = strict.DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes src into a CBOR-encoded byte slice.
func Marshal(src interface{}) ([]byte, error) {
	return encMode.Marshal(src)
}

// Unmarshal decodes CBOR in data into dst, ignoring fields unknown to dst.
func Unmarshal(data []byte, dst interface{}) error {
	return decMode.Unmarshal(data, dst)
}

// UnmarshalStrict decodes CBOR in data into dst, failing on fields unknown to dst.
func UnmarshalStrict(data []byte, dst interface{}) error {
	return strictMode.Unmarshal(data, dst)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
