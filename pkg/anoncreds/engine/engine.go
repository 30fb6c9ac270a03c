/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package engine defines the contracts the issuer core requires from the credential
// crypto engine, the wallet and the tails blob store. The issuer never computes
// signatures or accumulators itself; it orchestrates calls through these interfaces.
//
// All documents crossing this boundary are JSON, passed as json.RawMessage.
package engine

import (
	"context"
	"encoding/json"
	"io"
)

// WalletHandle is an opaque reference to an open wallet. It is owned by whoever opened
// the wallet; engines resolve it to their key storage and never outlive it.
type WalletHandle int32

// InvalidWalletHandle is the zero handle, never returned by a successful open.
const InvalidWalletHandle WalletHandle = 0

// CredDefConfig is the creation-time configuration of a credential definition.
type CredDefConfig struct {
	SupportRevocation bool `json:"support_revocation"`
}

// RevRegConfig is the creation-time configuration of a revocation registry.
type RevRegConfig struct {
	MaxCredNum   int    `json:"max_cred_num"`
	IssuanceType string `json:"issuance_type"`
}

// TailsConfig scopes a tails writer or reader.
type TailsConfig struct {
	BaseDir    string `json:"base_dir"`
	URIPattern string `json:"uri_pattern"`
}

// TailsWriter receives witness data while an engine builds a revocation registry.
// A writer is exclusive to the call that opened it.
type TailsWriter interface {
	// Write stores data once and returns where it was stored and its content hash.
	Write(ctx context.Context, data []byte) (location, hash string, err error)
	io.Closer
}

// TailsReader gives an engine access to the witness data of one registry.
type TailsReader interface {
	io.ReaderAt
	io.Closer
	// Hash returns the content hash of the tails data behind this reader.
	Hash() string
	// Location returns the location the tails data was read from.
	Location() string
	// Size returns the size of the tails data in bytes.
	Size() int64
}

// BlobStorage opens tails writers and readers.
type BlobStorage interface {
	OpenWriter(cfg TailsConfig) (TailsWriter, error)
	OpenReader(cfg TailsConfig, hash string) (TailsReader, error)
}

// Engine is the credential crypto engine capability surface.
//
// Every failure must be reported as an *Error carrying an ErrorCode so that the issuer
// core can classify it. The ctx passed in may be cancelled; in that case the engine is
// authoritative on whether a mutation committed.
type Engine interface {
	// CreateSchema builds a schema document. It does not need a wallet.
	CreateSchema(ctx context.Context, originDID, name, version string,
		attrNames []string) (id string, schema json.RawMessage, err error)

	// CreateAndStoreCredentialDefinition generates and stores the key material of a
	// credential definition bound to the given schema.
	CreateAndStoreCredentialDefinition(ctx context.Context, wallet WalletHandle, originDID string,
		schema json.RawMessage, tag, signatureType string,
		cfg CredDefConfig) (id string, credDef json.RawMessage, err error)

	// CreateCredentialOffer creates a nonce-bound offer for a stored credential definition.
	CreateCredentialOffer(ctx context.Context, wallet WalletHandle, credDefID string) (json.RawMessage, error)

	// CreateCredential signs encoded credential values. When revRegID is set the
	// credential takes the next index of that registry and a delta is returned.
	CreateCredential(ctx context.Context, wallet WalletHandle, offer, request, values json.RawMessage,
		revRegID string, tails TailsReader) (cred json.RawMessage, credRevID string, delta json.RawMessage, err error)

	// RevokeCredential revokes the credential at index credRevID of a registry.
	RevokeCredential(ctx context.Context, wallet WalletHandle, tails TailsReader,
		revRegID, credRevID string) (json.RawMessage, error)

	// CreateAndStoreRevocationRegistry creates a registry, its initial accumulator and
	// its tails data, written through the given writer.
	CreateAndStoreRevocationRegistry(ctx context.Context, wallet WalletHandle, originDID, revocDefType, tag,
		credDefID string, cfg RevRegConfig, tails TailsWriter) (id string, def, entry json.RawMessage, err error)
}
