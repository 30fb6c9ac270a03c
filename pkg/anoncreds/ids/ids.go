/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ids derives the ledger identifiers of schemas, credential definitions and
// revocation registries.
package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
)

const (
	schemaMarker   = "2"
	credDefMarker  = "3"
	revRegMarker   = "4"
	separator      = ":"
	schemaIDParts  = 4
	credDefIDParts = 5
)

// ErrSchemaNotOnLedger is returned when a credential definition ID is derived from a
// schema that has no ledger sequence number yet.
var ErrSchemaNotOnLedger = errors.New("schema has no ledger sequence number")

// SchemaID returns "{originDID}:2:{name}:{version}".
func SchemaID(originDID, name, version string) string {
	return strings.Join([]string{originDID, schemaMarker, name, version}, separator)
}

// CredentialDefinitionID returns "{originDID}:3:{signatureType}:{seqNo}:{tag}". Empty
// signatureType and tag fall back to anoncreds.DefaultSignatureType and
// anoncreds.DefaultCredDefTag, the same defaults credential definition creation uses.
func CredentialDefinitionID(originDID string, schemaSeqNo int, signatureType, tag string) (string, error) {
	if schemaSeqNo <= 0 {
		return "", ErrSchemaNotOnLedger
	}

	if signatureType == "" {
		signatureType = anoncreds.DefaultSignatureType
	}

	if tag == "" {
		tag = anoncreds.DefaultCredDefTag
	}

	return strings.Join([]string{originDID, credDefMarker, signatureType, strconv.Itoa(schemaSeqNo), tag},
		separator), nil
}

// RevocationRegistryID returns "{originDID}:4:{credDefID}:{revocDefType}:{tag}".
// An empty revocDefType falls back to anoncreds.DefaultRevocationType.
func RevocationRegistryID(originDID, credDefID, revocDefType, tag string) string {
	if revocDefType == "" {
		revocDefType = anoncreds.DefaultRevocationType
	}

	return strings.Join([]string{originDID, revRegMarker, credDefID, revocDefType, tag}, separator)
}

// SchemaParts are the components of a schema ID.
type SchemaParts struct {
	OriginDID string
	Name      string
	Version   string
}

// ParseSchemaID splits a schema ID. The origin DID may itself contain ':'.
func ParseSchemaID(id string) (*SchemaParts, error) {
	parts := strings.Split(id, separator)
	if len(parts) < schemaIDParts {
		return nil, fmt.Errorf("invalid schema id '%s'", id)
	}

	n := len(parts)
	if parts[n-3] != schemaMarker {
		return nil, fmt.Errorf("invalid schema id '%s': missing marker %s", id, schemaMarker)
	}

	return &SchemaParts{
		OriginDID: strings.Join(parts[:n-3], separator),
		Name:      parts[n-2],
		Version:   parts[n-1],
	}, nil
}

// CredDefParts are the components of a credential definition ID.
type CredDefParts struct {
	OriginDID     string
	SignatureType string
	SchemaSeqNo   int
	Tag           string
}

// ParseCredentialDefinitionID splits a credential definition ID.
func ParseCredentialDefinitionID(id string) (*CredDefParts, error) {
	parts := strings.Split(id, separator)
	if len(parts) < credDefIDParts {
		return nil, fmt.Errorf("invalid credential definition id '%s'", id)
	}

	n := len(parts)
	if parts[n-4] != credDefMarker {
		return nil, fmt.Errorf("invalid credential definition id '%s': missing marker %s", id, credDefMarker)
	}

	seqNo, err := strconv.Atoi(parts[n-2])
	if err != nil || seqNo <= 0 {
		return nil, fmt.Errorf("invalid credential definition id '%s': bad schema sequence number", id)
	}

	return &CredDefParts{
		OriginDID:     strings.Join(parts[:n-4], separator),
		SignatureType: parts[n-3],
		SchemaSeqNo:   seqNo,
		Tag:           parts[n-1],
	}, nil
}
