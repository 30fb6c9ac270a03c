//go:build ursa
// +build ursa

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ursa is an engine.Engine producing CL signatures with libursa. It supports
// credentials without revocation; revocation requests report AnoncredsRevocationNotSupported.
package ursa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bluele/gcache"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"github.com/hyperledger/ursa-wrapper-go/pkg/libursa/ursa"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/ids"
)

const (
	storeNamePrefix  = "anoncreds_cl_"
	masterSecretAttr = "master_secret"
	defaultCacheSize = 64
)

var logger = log.New("aries-framework/anoncreds/ursa")

// Option configures the engine.
type Option func(e *Engine)

// WithStorageProvider sets the provider wallets are opened in.
func WithStorageProvider(p storage.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithCacheSize sets how many credential definition keys are kept decoded.
func WithCacheSize(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// Engine is the libursa CL engine.
type Engine struct {
	provider  storage.Provider
	cacheSize int

	mu         sync.RWMutex
	wallets    map[engine.WalletHandle]*wallet
	lastHandle engine.WalletHandle
}

type wallet struct {
	store storage.Store
	keys  gcache.Cache
}

// keyRecord is the stored key material of a credential definition.
type keyRecord struct {
	ID                  string          `json:"id"`
	SchemaID            string          `json:"schemaId"`
	AttrNames           []string        `json:"attrNames"`
	PubKey              json.RawMessage `json:"pubKey"`
	PrivKey             json.RawMessage `json:"privKey"`
	KeyCorrectnessProof json.RawMessage `json:"keyCorrectnessProof"`
}

// New creates a CL engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		wallets:   map[engine.WalletHandle]*wallet{},
		cacheSize: defaultCacheSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.provider == nil {
		e.provider = mem.NewProvider()
	}

	return e
}

// OpenWallet opens (creating if needed) the named wallet and returns its handle.
func (e *Engine) OpenWallet(name string) (engine.WalletHandle, error) {
	if name == "" {
		return engine.InvalidWalletHandle, engine.NewError(engine.CommonInvalidParam, "wallet name is required")
	}

	store, err := e.provider.OpenStore(storeNamePrefix + name)
	if err != nil {
		return engine.InvalidWalletHandle, engine.NewError(engine.CommonIOError, "open wallet store: %s", err)
	}

	w := &wallet{store: store}
	w.keys = gcache.New(e.cacheSize).LRU().LoaderFunc(func(key interface{}) (interface{}, error) {
		return loadKeys(store, key.(string)) //nolint:forcetypeassert
	}).Build()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastHandle++
	e.wallets[e.lastHandle] = w

	return e.lastHandle, nil
}

// CloseWallet releases a wallet handle.
func (e *Engine) CloseWallet(h engine.WalletHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.wallets[h]
	if !ok {
		return engine.NewError(engine.WalletInvalidHandle, "unknown wallet handle %d", h)
	}

	w.keys.Purge()
	delete(e.wallets, h)

	return nil
}

func (e *Engine) wallet(h engine.WalletHandle) (*wallet, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	w, ok := e.wallets[h]
	if !ok {
		return nil, engine.NewError(engine.WalletInvalidHandle, "unknown wallet handle %d", h)
	}

	return w, nil
}

// CreateSchema builds a schema document.
func (e *Engine) CreateSchema(ctx context.Context, originDID, name, version string,
	attrNames []string) (string, json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	if len(attrNames) == 0 {
		return "", nil, engine.NewError(engine.CommonInvalidStructure, "a schema needs attributes")
	}

	// the schema builder rejects duplicates and reserved names
	credSchema, nonSchema, err := buildSchema(attrNames)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid attributes: %s", err)
	}

	_ = credSchema.Free() //nolint:errcheck
	_ = nonSchema.Free()  //nolint:errcheck

	schema := anoncreds.Schema{
		Ver:       anoncreds.DocumentVersion,
		ID:        ids.SchemaID(originDID, name, version),
		Name:      name,
		Version:   version,
		AttrNames: attrNames,
	}

	doc, err := json.Marshal(schema)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	return schema.ID, doc, nil
}

// CreateAndStoreCredentialDefinition generates a CL key pair for the schema attributes.
func (e *Engine) CreateAndStoreCredentialDefinition(ctx context.Context, h engine.WalletHandle, originDID string,
	schemaDoc json.RawMessage, tag, signatureType string, cfg engine.CredDefConfig) (string, json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	w, err := e.wallet(h)
	if err != nil {
		return "", nil, err
	}

	if cfg.SupportRevocation {
		return "", nil, errRevocationNotSupported()
	}

	schema := &anoncreds.Schema{}
	if err = json.Unmarshal(schemaDoc, schema); err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid schema: %s", err)
	}

	id, err := ids.CredentialDefinitionID(originDID, schema.SeqNo, signatureType, tag)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidStructure, "%s", err)
	}

	if _, err = w.store.Get(id); err == nil {
		return "", nil, engine.NewError(engine.AnoncredsCredDefAlreadyExists, "credential definition %s exists", id)
	}

	record, err := generateKeys(id, schema)
	if err != nil {
		return "", nil, err
	}

	credDef := anoncreds.CredentialDefinition{
		Ver:      anoncreds.DocumentVersion,
		ID:       id,
		SchemaID: strconv.Itoa(schema.SeqNo),
		Type:     anoncreds.DefaultSignatureType,
		Tag:      tag,
	}
	credDef.Value.Primary = record.PubKey

	doc, err := json.Marshal(credDef)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	if err = w.store.Put(id, data); err != nil {
		return "", nil, engine.NewError(engine.CommonIOError, "store keys: %s", err)
	}

	logger.Debugf("generated CL keys for %s", id)

	return id, doc, nil
}

// CreateCredentialOffer creates an offer with a fresh nonce.
func (e *Engine) CreateCredentialOffer(ctx context.Context, h engine.WalletHandle,
	credDefID string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, err := e.wallet(h)
	if err != nil {
		return nil, err
	}

	if _, err = ids.ParseCredentialDefinitionID(credDefID); err != nil {
		return nil, engine.NewError(engine.CommonInvalidStructure, "%s", err)
	}

	record, err := w.loadKeys(credDefID)
	if err != nil {
		return nil, err
	}

	nonce, err := ursa.NewNonce()
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "new nonce: %s", err)
	}

	defer nonce.Free() //nolint:errcheck

	nonceJSON, err := nonce.ToJSON()
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "encode nonce: %s", err)
	}

	offer := anoncreds.CredentialOffer{
		SchemaID:            record.SchemaID,
		CredDefID:           credDefID,
		KeyCorrectnessProof: record.KeyCorrectnessProof,
	}

	if err = json.Unmarshal(nonceJSON, &offer.Nonce); err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "decode nonce: %s", err)
	}

	doc, err := json.Marshal(offer)
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	return doc, nil
}

type request struct {
	ProverDID                 string          `json:"prover_did"`
	CredDefID                 string          `json:"cred_def_id"`
	BlindedMS                 json.RawMessage `json:"blinded_ms"`
	BlindedMSCorrectnessProof json.RawMessage `json:"blinded_ms_correctness_proof"`
	Nonce                     string          `json:"nonce"`
}

// CreateCredential signs the values blindly over the holder's master secret.
//
//nolint:funlen
func (e *Engine) CreateCredential(ctx context.Context, h engine.WalletHandle, offerDoc, requestDoc,
	valuesDoc json.RawMessage, revRegID string, _ engine.TailsReader) (json.RawMessage, string, json.RawMessage,
	error) {
	if err := ctx.Err(); err != nil {
		return nil, "", nil, err
	}

	if revRegID != "" {
		return nil, "", nil, errRevocationNotSupported()
	}

	w, err := e.wallet(h)
	if err != nil {
		return nil, "", nil, err
	}

	offer := &anoncreds.CredentialOffer{}
	if err = json.Unmarshal(offerDoc, offer); err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid offer: %s", err)
	}

	req := &request{}
	if err = json.Unmarshal(requestDoc, req); err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid request: %s", err)
	}

	if req.CredDefID != offer.CredDefID {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure,
			"request credential definition %s does not match offer %s", req.CredDefID, offer.CredDefID)
	}

	values := anoncreds.CredentialValues{}
	if err = json.Unmarshal(valuesDoc, &values); err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid values: %s", err)
	}

	record, err := w.loadKeys(offer.CredDefID)
	if err != nil {
		return nil, "", nil, err
	}

	if len(values) != len(record.AttrNames) {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure,
			"credential values do not match schema attributes %v", record.AttrNames)
	}

	signature, proof, err := sign(record, req, offer.Nonce, values)
	if err != nil {
		return nil, "", nil, err
	}

	credential, err := json.Marshal(anoncreds.Credential{
		SchemaID:                  record.SchemaID,
		CredDefID:                 record.ID,
		Values:                    values,
		Signature:                 signature,
		SignatureCorrectnessProof: proof,
	})
	if err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	return credential, "", nil, nil
}

// RevokeCredential is not supported.
func (e *Engine) RevokeCredential(context.Context, engine.WalletHandle, engine.TailsReader, string,
	string) (json.RawMessage, error) {
	return nil, errRevocationNotSupported()
}

// CreateAndStoreRevocationRegistry is not supported.
func (e *Engine) CreateAndStoreRevocationRegistry(context.Context, engine.WalletHandle, string, string, string,
	string, engine.RevRegConfig, engine.TailsWriter) (string, json.RawMessage, json.RawMessage, error) {
	return "", nil, nil, errRevocationNotSupported()
}

func (w *wallet) loadKeys(credDefID string) (*keyRecord, error) {
	v, err := w.keys.Get(credDefID)
	if err != nil {
		return nil, err
	}

	return v.(*keyRecord), nil //nolint:forcetypeassert
}

func loadKeys(store storage.Store, credDefID string) (*keyRecord, error) {
	data, err := store.Get(credDefID)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, engine.NewError(engine.WalletItemNotFound, "credential definition %s not found", credDefID)
	}

	if err != nil {
		return nil, engine.NewError(engine.CommonIOError, "load keys: %s", err)
	}

	record := &keyRecord{}
	if err = json.Unmarshal(data, record); err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "decode keys: %s", err)
	}

	return record, nil
}

func buildSchema(attrs []string) (*ursa.CredentialSchemaHandle, *ursa.NonCredentialSchemaHandle, error) {
	schemaBuilder, err := ursa.NewCredentialSchemaBuilder()
	if err != nil {
		return nil, nil, err
	}

	for _, attr := range attrs {
		if err = schemaBuilder.AddAttr(attr); err != nil {
			return nil, nil, err
		}
	}

	schema, err := schemaBuilder.Finalize()
	if err != nil {
		return nil, nil, err
	}

	nonSchemaBuilder, err := ursa.NewNonCredentialSchemaBuilder()
	if err != nil {
		return nil, nil, err
	}

	if err = nonSchemaBuilder.AddAttr(masterSecretAttr); err != nil {
		return nil, nil, err
	}

	nonSchema, err := nonSchemaBuilder.Finalize()
	if err != nil {
		return nil, nil, err
	}

	return schema, nonSchema, nil
}

func generateKeys(id string, schema *anoncreds.Schema) (*keyRecord, error) {
	credSchema, nonSchema, err := buildSchema(schema.AttrNames)
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidStructure, "invalid attributes: %s", err)
	}

	defer credSchema.Free() //nolint:errcheck
	defer nonSchema.Free()  //nolint:errcheck

	credDef, err := ursa.NewCredentialDef(credSchema, nonSchema, false)
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "generate keys: %s", err)
	}

	defer credDef.PubKey.Free()              //nolint:errcheck
	defer credDef.PrivKey.Free()             //nolint:errcheck
	defer credDef.KeyCorrectnessProof.Free() //nolint:errcheck

	record := &keyRecord{ID: id, SchemaID: schema.ID, AttrNames: schema.AttrNames}

	if record.PubKey, err = credDef.PubKey.ToJSON(); err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "encode public key: %s", err)
	}

	if record.PrivKey, err = credDef.PrivKey.ToJSON(); err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "encode private key: %s", err)
	}

	if record.KeyCorrectnessProof, err = credDef.KeyCorrectnessProof.ToJSON(); err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "encode key correctness proof: %s", err)
	}

	return record, nil
}

//nolint:funlen
func sign(record *keyRecord, req *request, offerNonce string, values anoncreds.CredentialValues) (json.RawMessage,
	json.RawMessage, error) {
	invalid := func(what string, err error) error {
		return engine.NewError(engine.CommonInvalidStructure, "%s: %s", what, err)
	}

	pubKey, err := ursa.CredentialPublicKeyFromJSON(record.PubKey)
	if err != nil {
		return nil, nil, engine.NewError(engine.CommonInvalidState, "decode public key: %s", err)
	}

	defer pubKey.Free() //nolint:errcheck

	privKey, err := ursa.CredentialPrivateKeyFromJSON(record.PrivKey)
	if err != nil {
		return nil, nil, engine.NewError(engine.CommonInvalidState, "decode private key: %s", err)
	}

	defer privKey.Free() //nolint:errcheck

	secrets, err := ursa.BlindedCredentialSecretsFromJSON(req.BlindedMS)
	if err != nil {
		return nil, nil, invalid("blinded master secret", err)
	}

	defer secrets.Free() //nolint:errcheck

	secretsProof, err := ursa.BlindedCredentialSecretsCorrectnessProofFromJSON(req.BlindedMSCorrectnessProof)
	if err != nil {
		return nil, nil, invalid("blinded master secret correctness proof", err)
	}

	defer secretsProof.Free() //nolint:errcheck

	credNonce, err := ursa.NonceFromJSON(strconv.Quote(offerNonce))
	if err != nil {
		return nil, nil, invalid("offer nonce", err)
	}

	defer credNonce.Free() //nolint:errcheck

	issuanceNonce, err := ursa.NonceFromJSON(strconv.Quote(req.Nonce))
	if err != nil {
		return nil, nil, invalid("request nonce", err)
	}

	defer issuanceNonce.Free() //nolint:errcheck

	valuesBuilder, err := ursa.NewValueBuilder()
	if err != nil {
		return nil, nil, engine.NewError(engine.CommonInvalidState, "values builder: %s", err)
	}

	for _, name := range record.AttrNames {
		value, ok := values[name]
		if !ok {
			return nil, nil, engine.NewError(engine.CommonInvalidStructure, "credential values miss attribute '%s'", name)
		}

		if err = valuesBuilder.AddDecKnown(name, value.Encoded); err != nil {
			return nil, nil, invalid(fmt.Sprintf("value of '%s'", name), err)
		}
	}

	credValues, err := valuesBuilder.Finalize()
	if err != nil {
		return nil, nil, invalid("values", err)
	}

	defer credValues.Free() //nolint:errcheck

	params := ursa.NewSignatureParams()
	params.ProverID = req.ProverDID
	params.CredentialPubKey = pubKey
	params.CredentialPrivKey = privKey
	params.BlindedCredentialSecrets = secrets
	params.BlindedCredentialSecretsCorrectnessProof = secretsProof
	params.CredentialNonce = credNonce
	params.CredentialValues = credValues
	params.CredentialIssuanceNonce = issuanceNonce

	signature, proof, err := params.SignCredential()
	if err != nil {
		return nil, nil, engine.NewError(engine.CommonInvalidStructure, "sign credential: %s", err)
	}

	defer signature.Free() //nolint:errcheck
	defer proof.Free()     //nolint:errcheck

	signatureJSON, err := signature.ToJSON()
	if err != nil {
		return nil, nil, engine.NewError(engine.CommonInvalidState, "encode signature: %s", err)
	}

	proofJSON, err := proof.ToJSON()
	if err != nil {
		return nil, nil, engine.NewError(engine.CommonInvalidState, "encode signature correctness proof: %s", err)
	}

	return signatureJSON, proofJSON, nil
}

var _ engine.Engine = (*Engine)(nil)

func errRevocationNotSupported() error {
	return engine.NewError(engine.AnoncredsRevocationNotSupported, "revocation is not supported by the CL engine")
}
