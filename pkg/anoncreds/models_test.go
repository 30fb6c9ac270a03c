/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaFromMap(t *testing.T) {
	var m map[string]interface{}

	require.NoError(t, json.Unmarshal([]byte(`{
		"ver": "1.0",
		"id": "did:x:2:degree:1.0",
		"name": "degree",
		"version": "1.0",
		"attrNames": ["name", "age"],
		"seqNo": 15
	}`), &m))

	schema, err := SchemaFromMap(m)
	require.NoError(t, err)
	require.Equal(t, &Schema{
		Ver:       "1.0",
		ID:        "did:x:2:degree:1.0",
		Name:      "degree",
		Version:   "1.0",
		AttrNames: []string{"name", "age"},
		SeqNo:     15,
	}, schema)

	t.Run("string sequence number", func(t *testing.T) {
		schema, err := SchemaFromMap(map[string]interface{}{"attrNames": []interface{}{"a"}, "seqNo": "7"})
		require.NoError(t, err)
		require.Equal(t, 7, schema.SeqNo)
	})

	t.Run("bad attribute names", func(t *testing.T) {
		_, err := SchemaFromMap(map[string]interface{}{
			"attrNames": map[string]interface{}{"name": 1},
		})
		require.Error(t, err)
	})
}

func TestCredentialDefinition_SupportsRevocation(t *testing.T) {
	credDef := &CredentialDefinition{}
	require.False(t, credDef.SupportsRevocation())

	credDef.Value.Revocation = json.RawMessage(`null`)
	require.False(t, credDef.SupportsRevocation())

	credDef.Value.Revocation = json.RawMessage(`{"g":"1"}`)
	require.True(t, credDef.SupportsRevocation())
}

func TestParseRevocationDelta(t *testing.T) {
	delta, err := ParseRevocationDelta("reg1", json.RawMessage(
		`{"ver":"1.0","value":{"prevAccum":"a","accum":"b","issued":[3],"revoked":[1,2]}}`))
	require.NoError(t, err)
	require.Equal(t, "reg1", delta.RevRegID)
	require.Equal(t, "a", delta.PriorAccumulator())
	require.Equal(t, "b", delta.NewAccumulator())
	require.Equal(t, []int{3, 1, 2}, delta.ChangedIndices())

	_, err = ParseRevocationDelta("reg1", json.RawMessage(`{`))
	require.Error(t, err)
}

func TestIssuanceType_Valid(t *testing.T) {
	require.True(t, IssuanceOnDemand.Valid())
	require.True(t, IssuanceByDefault.Valid())
	require.False(t, IssuanceType("ISSUANCE_SOMETIMES").Valid())
}
