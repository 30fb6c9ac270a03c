/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const (
	// DefaultSignatureType is the primary signature type of credential definitions.
	DefaultSignatureType = "CL"
	// DefaultCredDefTag is the tag used when a credential definition is created without one.
	DefaultCredDefTag = "default"
	// DefaultRevocationType is the revocation registry type.
	DefaultRevocationType = "CL_ACCUM"
	// DocumentVersion is the version written into documents built by this module.
	DocumentVersion = "1.0"
)

// IssuanceType fixes the initial status of the indices of a revocation registry.
type IssuanceType string

const (
	// IssuanceOnDemand registries start with every index revoked; issuance un-revokes it.
	IssuanceOnDemand IssuanceType = "ISSUANCE_ON_DEMAND"
	// IssuanceByDefault registries start with every index valid.
	IssuanceByDefault IssuanceType = "ISSUANCE_BY_DEFAULT"
)

// DefaultIssuanceType is applied when a registry is created without an issuance type.
const DefaultIssuanceType = IssuanceByDefault

// Valid reports whether t is a known issuance type.
func (t IssuanceType) Valid() bool {
	return t == IssuanceOnDemand || t == IssuanceByDefault
}

// Schema is a named, versioned, ordered list of attribute names.
type Schema struct {
	Ver       string   `json:"ver,omitempty"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	AttrNames []string `json:"attrNames"`
	// SeqNo is assigned by the ledger when the schema is written. Zero means unassigned.
	SeqNo int `json:"seqNo,omitempty"`
}

// SchemaFromMap decodes a loosely typed schema, such as one decoded from a ledger
// response, where seqNo may arrive as a float or a string.
func SchemaFromMap(m map[string]interface{}) (*Schema, error) {
	schema := &Schema{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           schema,
	})
	if err != nil {
		return nil, fmt.Errorf("new schema decoder: %w", err)
	}

	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	return schema, nil
}

// CredentialDefinition is an issuer's public key material bound to a schema.
type CredentialDefinition struct {
	Ver      string                    `json:"ver,omitempty"`
	ID       string                    `json:"id"`
	SchemaID string                    `json:"schemaId"`
	Type     string                    `json:"type"`
	Tag      string                    `json:"tag"`
	Value    CredentialDefinitionValue `json:"value"`
}

// CredentialDefinitionValue holds the public keys of a credential definition.
type CredentialDefinitionValue struct {
	Primary    json.RawMessage `json:"primary"`
	Revocation json.RawMessage `json:"revocation,omitempty"`
}

// SupportsRevocation reports whether the definition carries a revocation key.
func (c *CredentialDefinition) SupportsRevocation() bool {
	return len(c.Value.Revocation) > 0 && string(c.Value.Revocation) != "null"
}

// CredentialOffer binds one credential request to a credential definition through its nonce.
type CredentialOffer struct {
	SchemaID            string          `json:"schema_id"`
	CredDefID           string          `json:"cred_def_id"`
	KeyCorrectnessProof json.RawMessage `json:"key_correctness_proof"`
	Nonce               string          `json:"nonce"`
}

// AttributeValue is a raw attribute value together with the integer actually signed.
type AttributeValue struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded"`
}

// CredentialValues maps schema attribute names to their values.
type CredentialValues map[string]AttributeValue

// Credential is an issued credential.
type Credential struct {
	SchemaID                  string           `json:"schema_id"`
	CredDefID                 string           `json:"cred_def_id"`
	RevRegID                  string           `json:"rev_reg_id,omitempty"`
	Values                    CredentialValues `json:"values"`
	Signature                 json.RawMessage  `json:"signature"`
	SignatureCorrectnessProof json.RawMessage  `json:"signature_correctness_proof,omitempty"`
	RevReg                    json.RawMessage  `json:"rev_reg,omitempty"`
	Witness                   json.RawMessage  `json:"witness,omitempty"`
}

// RevocationRegistryDefinition is the public definition of a revocation registry.
type RevocationRegistryDefinition struct {
	Ver          string                            `json:"ver,omitempty"`
	ID           string                            `json:"id"`
	RevocDefType string                            `json:"revocDefType"`
	Tag          string                            `json:"tag"`
	CredDefID    string                            `json:"credDefId"`
	Value        RevocationRegistryDefinitionValue `json:"value"`
}

// RevocationRegistryDefinitionValue holds the registry parameters.
type RevocationRegistryDefinitionValue struct {
	IssuanceType  IssuanceType    `json:"issuanceType"`
	MaxCredNum    int             `json:"maxCredNum"`
	PublicKeys    json.RawMessage `json:"publicKeys,omitempty"`
	TailsHash     string          `json:"tailsHash"`
	TailsLocation string          `json:"tailsLocation"`
}

// RevocationRegistryEntry is an accumulator value of a registry.
type RevocationRegistryEntry struct {
	Ver   string `json:"ver,omitempty"`
	Value struct {
		Accum string `json:"accum"`
	} `json:"value"`
}

// RegistryState is the lifecycle state of a revocation registry record.
type RegistryState string

// Registry states.
const (
	RegistryStateActive RegistryState = "active"
	RegistryStateFull   RegistryState = "full"
)

// RevocationRegistry is the issuer's record of a revocation registry and its current accumulator.
type RevocationRegistry struct {
	ID            string        `json:"id"`
	CredDefID     string        `json:"credDefId"`
	RevocDefType  string        `json:"revocDefType"`
	Tag           string        `json:"tag"`
	MaxCredNum    int           `json:"maxCredNum"`
	IssuanceType  IssuanceType  `json:"issuanceType"`
	Accumulator   string        `json:"accumulator"`
	TailsLocation string        `json:"tailsLocation"`
	TailsHash     string        `json:"tailsHash"`
	IssuedCount   int           `json:"issuedCount"`
	State         RegistryState `json:"state"`
}

// RevocationDelta is the accumulator transition produced by one issuance or revocation.
type RevocationDelta struct {
	RevRegID string               `json:"-"`
	Ver      string               `json:"ver,omitempty"`
	Value    RevocationDeltaValue `json:"value"`
}

// RevocationDeltaValue lists the accumulators around a transition and the indices it changed.
type RevocationDeltaValue struct {
	PrevAccum string `json:"prevAccum,omitempty"`
	Accum     string `json:"accum"`
	Issued    []int  `json:"issued,omitempty"`
	Revoked   []int  `json:"revoked,omitempty"`
}

// PriorAccumulator returns the accumulator before the transition.
func (d *RevocationDelta) PriorAccumulator() string {
	return d.Value.PrevAccum
}

// NewAccumulator returns the accumulator after the transition.
func (d *RevocationDelta) NewAccumulator() string {
	return d.Value.Accum
}

// ChangedIndices returns every index the transition touched, issued first.
func (d *RevocationDelta) ChangedIndices() []int {
	changed := make([]int, 0, len(d.Value.Issued)+len(d.Value.Revoked))
	changed = append(changed, d.Value.Issued...)

	return append(changed, d.Value.Revoked...)
}

// ParseRevocationDelta decodes a delta document of the given registry.
func ParseRevocationDelta(revRegID string, doc json.RawMessage) (*RevocationDelta, error) {
	delta := &RevocationDelta{}

	if err := json.Unmarshal(doc, delta); err != nil {
		return nil, fmt.Errorf("parse revocation delta: %w", err)
	}

	delta.RevRegID = revRegID

	return delta, nil
}
