/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package encoding maps raw credential attribute values to the integers that are signed.
//
// The mapping is shared by every issuer, holder and verifier of the network: changing it
// invalidates every credential issued under it. Rules are therefore versioned and an
// existing version is never modified; a new rule gets a new version identifier.
package encoding

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

// Version identifies an encoding rule.
type Version string

const (
	// V1 encodes 32-bit integers as themselves and everything else as the big-endian
	// integer value of the SHA-256 digest of the canonical string.
	//
	// Integral strings may carry surrounding whitespace and a sign but no digit-group
	// underscores: "1_000" hashes, where ACA-Py's int() would read 1000.
	V1 Version = "v1"

	// Current is the rule used for newly issued credentials.
	Current = V1
)

type encodeFunc func(raw interface{}) string

var encoders = map[Version]encodeFunc{ //nolint:gochecknoglobals
	V1: encodeV1,
}

// Encode returns the encoded value of raw under the current rule, as a base-10 string.
func Encode(raw interface{}) string {
	return encodeV1(raw)
}

// EncodeVersion encodes raw under the given rule version.
func EncodeVersion(version Version, raw interface{}) (string, error) {
	encode, ok := encoders[version]
	if !ok {
		return "", fmt.Errorf("unknown encoding version '%s'", version)
	}

	return encode(raw), nil
}

// EncodeBig is Encode returning a big.Int.
func EncodeBig(raw interface{}) *big.Int {
	n, _ := new(big.Int).SetString(Encode(raw), 10) //nolint:gomnd

	return n
}

// Canonical returns the canonical string form of raw: the "raw" value stored alongside
// the encoded one.
func Canonical(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return "None"
	case string:
		return v
	case bool:
		if v {
			return "True"
		}

		return "False"
	case json.Number:
		return v.String()
	case float32:
		return formatFloat(float64(v), 32) //nolint:gomnd
	case float64:
		return formatFloat(v, 64) //nolint:gomnd
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat renders floats the way the reference issuer stringifies them, so that an
// integral float such as 2.0 hashes instead of encoding as the integer 2.
func formatFloat(f float64, bitSize int) string {
	if math.IsInf(f, 1) {
		return "inf"
	}

	if math.IsInf(f, -1) {
		return "-inf"
	}

	if math.IsNaN(f) {
		return "nan"
	}

	const exponentThreshold = 1e16

	if math.Abs(f) >= exponentThreshold || (f != 0 && math.Abs(f) < 1e-4) {
		s := strconv.FormatFloat(f, 'e', -1, bitSize)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")

		if len(digits) < 2 { //nolint:gomnd
			digits = strings.Repeat("0", 2-len(digits)) + digits
		}

		return mantissa + "e" + sign + digits
	}

	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

func encodeV1(raw interface{}) string {
	if i, ok := int32Value(raw); ok {
		return strconv.FormatInt(i, 10) //nolint:gomnd
	}

	canonical := Canonical(raw)

	if i, err := strconv.ParseInt(strings.TrimSpace(canonical), 10, 32); err == nil { //nolint:gomnd
		return strconv.FormatInt(i, 10) //nolint:gomnd
	}

	digest := sha256.Sum256([]byte(canonical))

	return new(big.Int).SetBytes(digest[:]).String()
}

// int32Value reports integer-typed values that fit the signed 32-bit range. Booleans
// count as the integers 1 and 0.
func int32Value(raw interface{}) (int64, bool) {
	var i int64

	switch v := raw.(type) {
	case bool:
		if v {
			return 1, true
		}

		return 0, true
	case int:
		i = int64(v)
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case uint8:
		i = int64(v)
	case uint16:
		i = int64(v)
	case uint32:
		i = int64(v)
	case uint:
		if uint64(v) > math.MaxInt32 {
			return 0, false
		}

		i = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return 0, false
		}

		i = int64(v)
	default:
		return 0, false
	}

	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, false
	}

	return i, true
}

// Values builds the signed values of a credential: exactly one entry per schema
// attribute. Values for names outside attrNames are ignored. A missing attribute fails
// with anoncreds.ErrMissingAttribute.
func Values(attrNames []string, values map[string]interface{}) (anoncreds.CredentialValues, error) {
	encoded := make(anoncreds.CredentialValues, len(attrNames))

	for _, name := range attrNames {
		raw, ok := values[name]
		if !ok {
			return nil, anoncreds.NewError(anoncreds.ErrMissingAttribute,
				fmt.Sprintf("provided credential values are missing a value for the schema attribute '%s'", name))
		}

		encoded[name] = anoncreds.AttributeValue{
			Raw:     Canonical(raw),
			Encoded: Encode(raw),
		}
	}

	return encoded, nil
}
