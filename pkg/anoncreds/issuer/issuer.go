/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package issuer orchestrates the issuer side of AnonCreds: schemas, credential
// definitions, offers, credential issuance and revocation.
//
// The Issuer holds no key material. Every cryptographic step is delegated to an
// engine.Engine operating on a wallet handle owned by the caller, and every engine
// failure is translated into an *anoncreds.Error before it leaves this package.
package issuer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/encoding"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/ids"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/metrics"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/revocation"
)

const (
	opCreateSchema  = "create_schema"
	opCreateCredDef = "create_credential_definition"
	opCreateOffer   = "create_credential_offer"
	opCreateCred    = "create_credential"
	opCredDefLookup = "credential_definition_lookup"
)

var logger = log.New("aries-framework/anoncreds/issuer")

// Option configures the Issuer.
type Option func(i *Issuer)

// WithRevocationManager sets the manager that creates and serializes revocation
// registries. By default the Issuer creates one over in-memory storage.
func WithRevocationManager(m *revocation.Manager) Option {
	return func(i *Issuer) {
		i.revocation = m
	}
}

// WithMetrics sets the metrics the Issuer records into.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Issuer) {
		i.metrics = m
	}
}

// WithDefaultTag sets the credential definition tag used when none is given.
func WithDefaultTag(tag string) Option {
	return func(i *Issuer) {
		i.defaultTag = tag
	}
}

// Issuer issues AnonCreds credentials through an engine.
type Issuer struct {
	engine     engine.Engine
	wallet     engine.WalletHandle
	revocation *revocation.Manager
	metrics    *metrics.Metrics
	defaultTag string
}

// New creates an Issuer over the given engine and wallet handle.
func New(e engine.Engine, wallet engine.WalletHandle, opts ...Option) (*Issuer, error) {
	i := &Issuer{
		engine:     e,
		wallet:     wallet,
		defaultTag: anoncreds.DefaultCredDefTag,
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.revocation == nil {
		m, err := revocation.New(e, wallet, revocation.WithMetrics(i.metrics))
		if err != nil {
			return nil, fmt.Errorf("create revocation manager: %w", err)
		}

		i.revocation = m
	}

	return i, nil
}

// Revocation returns the revocation registry manager.
func (i *Issuer) Revocation() *revocation.Manager {
	return i.revocation
}

// MakeSchemaID returns the schema ID for the given origin DID, name and version.
func (i *Issuer) MakeSchemaID(originDID, name, version string) string {
	return ids.SchemaID(originDID, name, version)
}

// CreateAndStoreSchema creates a schema document.
func (i *Issuer) CreateAndStoreSchema(ctx context.Context, originDID, name, version string,
	attrNames []string) (string, json.RawMessage, error) {
	start := time.Now()

	id, schema, err := i.engine.CreateSchema(ctx, originDID, name, version, attrNames)
	if err != nil {
		return "", nil, i.fail(ctx, opCreateSchema, start, err, "Error when creating schema")
	}

	i.metrics.RecordOperation(opCreateSchema, metrics.OutcomeSuccess, start)

	return id, schema, nil
}

// MakeCredentialDefinitionID returns the credential definition ID for a schema already
// written to the ledger. An empty signature type or tag takes the default.
func (i *Issuer) MakeCredentialDefinitionID(originDID string, schema *anoncreds.Schema, signatureType,
	tag string) (string, error) {
	if schema == nil {
		return "", errSchemaRequired()
	}

	if tag == "" {
		tag = i.defaultTag
	}

	return ids.CredentialDefinitionID(originDID, schema.SeqNo, signatureType, tag)
}

// CredentialDefinitionInWallet reports whether the wallet holds the key material of
// credDefID.
//
// The engine has no existence query, so the check builds a credential offer and
// discards it. Not-found and malformed-identifier failures mean false; any other
// failure is returned.
func (i *Issuer) CredentialDefinitionInWallet(ctx context.Context, credDefID string) (bool, error) {
	start := time.Now()

	_, err := i.engine.CreateCredentialOffer(ctx, i.wallet, credDefID)
	if err == nil {
		i.metrics.RecordOperation(opCredDefLookup, metrics.OutcomeSuccess, start)

		return true, nil
	}

	if code, ok := engine.CodeOf(err); ok &&
		(code == engine.WalletItemNotFound || code == engine.CommonInvalidStructure) {
		i.metrics.RecordOperation(opCredDefLookup, metrics.OutcomeSuccess, start)

		return false, nil
	}

	return false, i.fail(ctx, opCredDefLookup, start, err, "Error when checking wallet for credential definition")
}

// CreateAndStoreCredentialDefinition creates a credential definition for schema and stores
// its key material in the wallet. An empty signature type or tag takes the default.
func (i *Issuer) CreateAndStoreCredentialDefinition(ctx context.Context, originDID string,
	schema *anoncreds.Schema, signatureType, tag string, supportRevocation bool) (string, json.RawMessage, error) {
	start := time.Now()

	if signatureType == "" {
		signatureType = anoncreds.DefaultSignatureType
	}

	if tag == "" {
		tag = i.defaultTag
	}

	schemaDoc, err := json.Marshal(schema)
	if err != nil {
		return "", nil, i.fail(ctx, opCreateCredDef, start, err, "Error when encoding schema")
	}

	id, credDef, err := i.engine.CreateAndStoreCredentialDefinition(ctx, i.wallet, originDID, schemaDoc, tag,
		signatureType, engine.CredDefConfig{SupportRevocation: supportRevocation})
	if err != nil {
		return "", nil, i.fail(ctx, opCreateCredDef, start, err, "Error when creating credential definition")
	}

	i.metrics.RecordOperation(opCreateCredDef, metrics.OutcomeSuccess, start)

	logger.Debugf("created credential definition %s", id)

	return id, credDef, nil
}

// CreateCredentialOffer creates an offer for credDefID.
func (i *Issuer) CreateCredentialOffer(ctx context.Context, credDefID string) (*anoncreds.CredentialOffer, error) {
	start := time.Now()

	doc, err := i.engine.CreateCredentialOffer(ctx, i.wallet, credDefID)
	if err != nil {
		return nil, i.fail(ctx, opCreateOffer, start, err, "Error when creating credential offer")
	}

	offer := &anoncreds.CredentialOffer{}
	if err = json.Unmarshal(doc, offer); err != nil {
		return nil, i.fail(ctx, opCreateOffer, start, err, "Error when reading credential offer")
	}

	i.metrics.RecordOperation(opCreateOffer, metrics.OutcomeSuccess, start)

	return offer, nil
}

// CreateCredential issues a credential for request, answering offer.
//
// values must hold a value for every schema attribute; values for other names are
// dropped. When revRegID is set the credential is issued against that revocation
// registry under its lock, and the returned credential revocation ID is its index.
func (i *Issuer) CreateCredential(ctx context.Context, schema *anoncreds.Schema, offer *anoncreds.CredentialOffer,
	request json.RawMessage, values map[string]interface{}, revRegID string,
	tailsReader engine.TailsReader) (json.RawMessage, string, error) {
	start := time.Now()

	if schema == nil {
		i.metrics.RecordOperation(opCreateCred, metrics.OutcomeError, start)

		return nil, "", errSchemaRequired()
	}

	encoded, err := encoding.Values(schema.AttrNames, values)
	if err != nil {
		i.metrics.RecordOperation(opCreateCred, metrics.OutcomeInvalidValues, start)

		return nil, "", err
	}

	valuesDoc, err := json.Marshal(encoded)
	if err != nil {
		return nil, "", i.fail(ctx, opCreateCred, start, err, "Error when encoding credential values")
	}

	offerDoc, err := json.Marshal(offer)
	if err != nil {
		return nil, "", i.fail(ctx, opCreateCred, start, err, "Error when encoding credential offer")
	}

	var (
		credential json.RawMessage
		credRevID  string
	)

	issue := func(ctx context.Context) (json.RawMessage, error) {
		var (
			delta     json.RawMessage
			engineErr error
		)

		credential, credRevID, delta, engineErr = i.engine.CreateCredential(ctx, i.wallet, offerDoc, request,
			valuesDoc, revRegID, tailsReader)

		return delta, engineErr
	}

	if revRegID == "" {
		if _, err = issue(ctx); err != nil {
			err = anoncreds.TranslateContext(ctx, err, "Error when issuing credential")
		}
	} else {
		// the manager translates, including lock wait failures
		err = i.revocation.Issue(ctx, revRegID, tailsReader, issue)
	}

	if err != nil {
		if anoncreds.IsRevocationRegistryFull(err) {
			logger.Errorf("Revocation registry %s is full", revRegID)
		}

		i.metrics.RecordOperation(opCreateCred, outcome(err), start)

		return nil, "", err
	}

	i.metrics.RecordOperation(opCreateCred, metrics.OutcomeSuccess, start)

	return credential, credRevID, nil
}

// RevokeCredential revokes credRevID in revRegID and returns the resulting delta.
func (i *Issuer) RevokeCredential(ctx context.Context, revRegID string, tailsReader engine.TailsReader,
	credRevID string) (*anoncreds.RevocationDelta, error) {
	return i.revocation.Revoke(ctx, revRegID, tailsReader, credRevID)
}

// CreateAndStoreRevocationRegistry creates a revocation registry and writes its tails data.
// It returns the registry ID, the registry definition and the initial registry entry.
func (i *Issuer) CreateAndStoreRevocationRegistry(ctx context.Context,
	cfg revocation.RegistryConfig) (string, json.RawMessage, json.RawMessage, error) {
	return i.revocation.CreateRegistry(ctx, cfg)
}

func (i *Issuer) fail(ctx context.Context, op string, start time.Time, err error, msg string) error {
	err = anoncreds.TranslateContext(ctx, err, msg)
	i.metrics.RecordOperation(op, outcome(err), start)

	return err
}

func outcome(err error) string {
	switch {
	case anoncreds.IsRevocationRegistryFull(err):
		return metrics.OutcomeRegistryFull
	case errors.Is(err, anoncreds.ErrOutcomeUnknown):
		return metrics.OutcomeUnknown
	default:
		return metrics.OutcomeError
	}
}

func errSchemaRequired() error {
	return anoncreds.NewError(anoncreds.ErrIssuer, "schema is required")
}
