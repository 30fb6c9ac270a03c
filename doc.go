/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds is the issuer side of Hyperledger Indy AnonCreds for Go.
//
// Packages for end developer usage
//
// pkg/anoncreds/issuer: Creates schemas, credential definitions, offers and credentials, and
// issues against revocation registries.
//
// pkg/anoncreds/revocation: Creates revocation registries, serializes issuance and revocation
// per registry and keeps a record of each registry.
//
// pkg/anoncreds/engine: The credential engine contract. memengine is a storage backed engine;
// ursa (build tag ursa) signs with libursa.
//
// cmd/anoncreds-issuer: Command line issuer over a LevelDB wallet.
//
// Basic workflow
//
//      1) Open a wallet on an engine.
//      2) Create an issuer with issuer.New, passing the engine and wallet.
//      3) Create a schema and a credential definition, then offer and issue credentials.
//      4) Optionally create a revocation registry and issue against it.
package anoncreds
