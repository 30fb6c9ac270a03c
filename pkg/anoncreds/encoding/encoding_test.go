/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package encoding

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

func sha256Int(s string) string {
	digest := sha256.Sum256([]byte(s))

	return new(big.Int).SetBytes(digest[:]).String()
}

func TestEncode(t *testing.T) {
	t.Run("integer strings encode as themselves", func(t *testing.T) {
		require.Equal(t, "412", Encode("412"))
		require.Equal(t, "-7", Encode("-7"))
		require.Equal(t, "0", Encode("0"))
		require.Equal(t, "2147483647", Encode("2147483647"))
		require.Equal(t, "-2147483648", Encode("-2147483648"))
		require.Equal(t, "12", Encode("012"))
		require.Equal(t, "42", Encode(" 42 "))
	})

	t.Run("integer values encode as themselves", func(t *testing.T) {
		require.Equal(t, "412", Encode(412))
		require.Equal(t, "-7", Encode(int64(-7)))
		require.Equal(t, "255", Encode(uint8(255)))
		require.Equal(t, "1", Encode(true))
		require.Equal(t, "0", Encode(false))
	})

	t.Run("out of range integers are hashed", func(t *testing.T) {
		require.Equal(t, sha256Int("2147483648"), Encode("2147483648"))
		require.Equal(t, sha256Int("2147483648"), Encode(int64(2147483648)))
		require.Equal(t, sha256Int("-2147483649"), Encode("-2147483649"))
		require.Equal(t, sha256Int("4294967296"), Encode(uint64(4294967296)))
	})

	t.Run("non integer strings are hashed", func(t *testing.T) {
		require.Equal(t, sha256Int("Alice"), Encode("Alice"))
		require.Equal(t, sha256Int(""), Encode(""))
		require.Equal(t, sha256Int("1.5"), Encode("1.5"))
		require.Equal(t, sha256Int("Bäckerei"), Encode("Bäckerei"))
		require.NotEqual(t, Encode("Alice"), Encode("alice"))
	})

	t.Run("digit group underscores are hashed", func(t *testing.T) {
		require.Equal(t, sha256Int("1_000"), Encode("1_000"))
		require.NotEqual(t, Encode("1000"), Encode("1_000"))
		require.Equal(t, sha256Int("-2_147"), Encode("-2_147"))
	})

	t.Run("known digest", func(t *testing.T) {
		require.Equal(t,
			"68086943237164982734333428280784300550565381723532936263016368251445461241953",
			Encode("101 Wilson Lane"))
	})

	t.Run("floats keep their fractional form", func(t *testing.T) {
		require.Equal(t, sha256Int("2.0"), Encode(2.0))
		require.Equal(t, sha256Int("1.5"), Encode(1.5))
	})

	t.Run("deterministic", func(t *testing.T) {
		for _, v := range []interface{}{"Alice", "412", 3, nil, 2.5, json.Number("17")} {
			require.Equal(t, Encode(v), Encode(v))
		}
	})
}

func TestEncodeVersion(t *testing.T) {
	enc, err := EncodeVersion(V1, "Alice")
	require.NoError(t, err)
	require.Equal(t, Encode("Alice"), enc)

	_, err = EncodeVersion("v0", "Alice")
	require.EqualError(t, err, "unknown encoding version 'v0'")
}

func TestEncodeBig(t *testing.T) {
	require.Equal(t, big.NewInt(-7), EncodeBig("-7"))
	require.Equal(t, 1, EncodeBig("Alice").Sign())
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want string
	}{
		{name: "string", raw: "Alice", want: "Alice"},
		{name: "int", raw: 42, want: "42"},
		{name: "bool", raw: true, want: "True"},
		{name: "nil", raw: nil, want: "None"},
		{name: "integral float", raw: 2.0, want: "2.0"},
		{name: "float", raw: 0.25, want: "0.25"},
		{name: "large float", raw: 1e16, want: "1e+16"},
		{name: "small float", raw: 0.00001, want: "1e-05"},
		{name: "json number", raw: json.Number("3.10"), want: "3.10"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Canonical(tc.raw))
		})
	}
}

func TestValues(t *testing.T) {
	attrNames := []string{"name", "age"}

	t.Run("success drops extra values", func(t *testing.T) {
		values, err := Values(attrNames, map[string]interface{}{
			"name":  "Alice",
			"age":   30,
			"extra": "ignored",
		})
		require.NoError(t, err)
		require.Len(t, values, 2)
		require.Equal(t, anoncreds.AttributeValue{Raw: "30", Encoded: "30"}, values["age"])
		require.Equal(t, anoncreds.AttributeValue{Raw: "Alice", Encoded: Encode("Alice")}, values["name"])
		require.NotContains(t, values, "extra")
	})

	t.Run("missing attribute", func(t *testing.T) {
		values, err := Values(attrNames, map[string]interface{}{"name": "Alice"})
		require.Nil(t, values)
		require.True(t, errors.Is(err, anoncreds.ErrMissingAttribute))
		require.True(t, errors.Is(err, anoncreds.ErrIssuer))
		require.Contains(t, err.Error(), "'age'")
	})
}
