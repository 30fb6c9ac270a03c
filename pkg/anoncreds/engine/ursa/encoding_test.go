//go:build ursa
// +build ursa

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ursa

import (
	"math"
	"testing"

	"github.com/hyperledger/ursa-wrapper-go/pkg/libursa/ursa"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/encoding"
)

// The issuer core encodes without cgo; these cases keep it in step with libursa.
func TestEncodingMatchesLibursa(t *testing.T) {
	t.Run("strings", func(t *testing.T) {
		for _, raw := range []string{
			"Alice", "", "87121", "0", "-1", "2147483647", "2147483648", "-2147483648", "-2147483649",
			"12.5", "True", "None",
		} {
			gotRaw, enc := ursa.EncodeValue(raw)
			require.Equal(t, raw, gotRaw)
			require.Equal(t, enc, encoding.Encode(raw), "encoded value of %q", raw)
		}
	})

	t.Run("integers", func(t *testing.T) {
		for _, raw := range []int{0, 42, -7, math.MaxInt32, math.MinInt32, math.MaxInt32 + 1, math.MinInt32 - 1} {
			_, enc := ursa.EncodeValue(raw)
			require.Equal(t, enc, encoding.Encode(raw), "encoded value of %d", raw)
		}
	})

	t.Run("booleans", func(t *testing.T) {
		_, enc := ursa.EncodeValue(true)
		require.Equal(t, enc, encoding.Encode(true))
		require.Equal(t, "1", enc)

		_, enc = ursa.EncodeValue(false)
		require.Equal(t, enc, encoding.Encode(false))
		require.Equal(t, "0", enc)
	})

	// nil and floats are encoded through their canonical string, so the comparison is
	// against libursa fed that string.
	t.Run("canonical forms", func(t *testing.T) {
		for _, raw := range []interface{}{nil, 2.0, 12.5, -0.25, 1e16, float32(1.5)} {
			_, enc := ursa.EncodeValue(encoding.Canonical(raw))
			require.Equal(t, enc, encoding.Encode(raw), "encoded value of %v", raw)
		}
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		// Integral strings are trimmed before the 32-bit check, as the reference issuer's
		// int() does.
		require.Equal(t, "42", encoding.Encode(" 42\n"))

		_, enc := ursa.EncodeValue("42")
		require.Equal(t, enc, encoding.Encode(" 42\n"))
	})
}
