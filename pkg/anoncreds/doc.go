/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds holds the data model and error taxonomy shared by the issuer side of
// the AnonCreds protocol.
//
// Sub-packages:
//
//	encoding:   canonical encoding of raw attribute values into signed integers
//	ids:        schema, credential definition and revocation registry identifiers
//	engine:     contracts of the credential crypto engine, wallet and tails storage
//	revocation: revocation registry lifecycle and per-registry serialization
//	issuer:     schema, credential definition, offer and credential issuance
//	tails:      file based write-once tails blob storage
//
// Basic workflow
//
//  1. Open a wallet in an engine (for example memengine) and create an issuer.
//  2. Create a schema, write it to a ledger and record its sequence number.
//  3. Create a credential definition and, for revocable credentials, a revocation registry.
//  4. Create offers, then issue credentials against holder requests.
//  5. Revoke credentials by registry index when needed.
package anoncreds
