/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package memengine is a reference implementation of engine.Engine backed by an
// aries storage provider. It follows the observable contract of an AnonCreds engine
// (identifiers, documents, index allocation, issuance types, error codes) but its
// signatures and accumulators are keyed digests, not CL cryptography. Use it for tests,
// local development and as a model for engine adapters.
package memengine

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/ids"
)

const (
	storeNamePrefix = "anoncreds_"
	credDefKey      = "creddef_%s"
	revRegKey       = "revreg_%s"
	secretSize      = 32
	nonceBits       = 80
	tailSize        = sha256.Size
	// maxAttributes is the attribute limit of a schema.
	maxAttributes = 125
)

var logger = log.New("aries-framework/anoncreds/memengine")

// Option configures the engine.
type Option func(e *Engine)

// WithStorageProvider sets the provider wallets are opened in. Defaults to an
// in-memory provider.
func WithStorageProvider(p storage.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// Engine is the reference engine.
type Engine struct {
	provider   storage.Provider
	mu         sync.RWMutex
	wallets    map[engine.WalletHandle]*wallet
	lastHandle engine.WalletHandle
}

type wallet struct {
	name  string
	store storage.Store
	// mu guards read-modify-write sequences on the store.
	mu sync.Mutex
}

// New creates a reference engine.
func New(opts ...Option) *Engine {
	e := &Engine{wallets: map[engine.WalletHandle]*wallet{}}

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

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastHandle++
	e.wallets[e.lastHandle] = &wallet{name: name, store: store}

	logger.Debugf("opened wallet %s with handle %d", name, e.lastHandle)

	return e.lastHandle, nil
}

// CloseWallet releases a wallet handle. Stored data is kept.
func (e *Engine) CloseWallet(h engine.WalletHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.wallets[h]; !ok {
		return engine.NewError(engine.WalletInvalidHandle, "unknown wallet handle %d", h)
	}

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

type credDefRecord struct {
	ID                string          `json:"id"`
	SchemaID          string          `json:"schemaId"`
	AttrNames         []string        `json:"attrNames"`
	Secret            string          `json:"secret"`
	SupportRevocation bool            `json:"supportRevocation"`
	Definition        json.RawMessage `json:"definition"`
}

type revRegRecord struct {
	ID           string                 `json:"id"`
	CredDefID    string                 `json:"credDefId"`
	MaxCredNum   int                    `json:"maxCredNum"`
	IssuanceType anoncreds.IssuanceType `json:"issuanceType"`
	Accum        string                 `json:"accum"`
	TailsHash    string                 `json:"tailsHash"`
	Next         int                    `json:"next"`
	Revoked      map[int]bool           `json:"revoked"`
}

// CreateSchema builds a schema document.
func (e *Engine) CreateSchema(ctx context.Context, originDID, name, version string,
	attrNames []string) (string, json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	if originDID == "" || name == "" || version == "" {
		return "", nil, engine.NewError(engine.CommonInvalidStructure, "origin DID, name and version are required")
	}

	if len(attrNames) == 0 || len(attrNames) > maxAttributes {
		return "", nil, engine.NewError(engine.CommonInvalidStructure,
			"a schema needs between 1 and %d attributes", maxAttributes)
	}

	seen := make(map[string]struct{}, len(attrNames))

	for _, attr := range attrNames {
		if attr == "" {
			return "", nil, engine.NewError(engine.CommonInvalidStructure, "empty attribute name")
		}

		if _, dup := seen[attr]; dup {
			return "", nil, engine.NewError(engine.CommonInvalidStructure, "duplicate attribute name '%s'", attr)
		}

		seen[attr] = struct{}{}
	}

	schema := anoncreds.Schema{
		Ver:       anoncreds.DocumentVersion,
		ID:        ids.SchemaID(originDID, name, version),
		Name:      name,
		Version:   version,
		AttrNames: attrNames,
	}

	doc, err := json.Marshal(schema)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidState, "marshal schema: %s", err)
	}

	return schema.ID, doc, nil
}

// CreateAndStoreCredentialDefinition generates a credential definition key and stores it.
func (e *Engine) CreateAndStoreCredentialDefinition(ctx context.Context, h engine.WalletHandle, originDID string,
	schemaDoc json.RawMessage, tag, signatureType string, cfg engine.CredDefConfig) (string, json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	w, err := e.wallet(h)
	if err != nil {
		return "", nil, err
	}

	schema := &anoncreds.Schema{}
	if err = json.Unmarshal(schemaDoc, schema); err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid schema: %s", err)
	}

	if signatureType != anoncreds.DefaultSignatureType {
		return "", nil, engine.NewError(engine.CommonInvalidParam, "unsupported signature type '%s'", signatureType)
	}

	id, err := ids.CredentialDefinitionID(originDID, schema.SeqNo, signatureType, tag)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidStructure, "%s", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err = w.store.Get(fmt.Sprintf(credDefKey, id)); err == nil {
		return "", nil, engine.NewError(engine.AnoncredsCredDefAlreadyExists, "credential definition %s exists", id)
	} else if !errors.Is(err, storage.ErrDataNotFound) {
		return "", nil, engine.NewError(engine.CommonIOError, "%s", err)
	}

	secret, err := randomHex(secretSize)
	if err != nil {
		return "", nil, err
	}

	credDef := anoncreds.CredentialDefinition{
		Ver:      anoncreds.DocumentVersion,
		ID:       id,
		SchemaID: strconv.Itoa(schema.SeqNo),
		Type:     signatureType,
		Tag:      tag,
	}

	credDef.Value.Primary, err = json.Marshal(primaryKey(secret, schema.AttrNames))
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	if cfg.SupportRevocation {
		credDef.Value.Revocation, err = json.Marshal(map[string]string{"pk": digest(secret, "revocation")})
		if err != nil {
			return "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
		}
	}

	doc, err := json.Marshal(credDef)
	if err != nil {
		return "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	record := &credDefRecord{
		ID:                id,
		SchemaID:          schema.ID,
		AttrNames:         schema.AttrNames,
		Secret:            secret,
		SupportRevocation: cfg.SupportRevocation,
		Definition:        doc,
	}

	if err = putJSON(w.store, fmt.Sprintf(credDefKey, id), record); err != nil {
		return "", nil, err
	}

	logger.Debugf("stored credential definition %s in wallet %s", id, w.name)

	return id, doc, nil
}

// CreateCredentialOffer creates a nonce-bound offer.
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

	record := &credDefRecord{}
	if err = getJSON(w.store, fmt.Sprintf(credDefKey, credDefID), record); err != nil {
		return nil, err
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, err
	}

	offer := anoncreds.CredentialOffer{
		SchemaID:  record.SchemaID,
		CredDefID: credDefID,
		Nonce:     nonce,
	}

	offer.KeyCorrectnessProof, err = json.Marshal(map[string]string{"c": digest(record.Secret, "kcp")})
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	doc, err := json.Marshal(offer)
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	return doc, nil
}

// Request is the shape of the holder's credential request the engine reads.
type Request struct {
	ProverDID                 string          `json:"prover_did"`
	CredDefID                 string          `json:"cred_def_id"`
	BlindedMS                 json.RawMessage `json:"blinded_ms"`
	BlindedMSCorrectnessProof json.RawMessage `json:"blinded_ms_correctness_proof"`
	Nonce                     string          `json:"nonce"`
}

// CreateCredential signs credential values, taking a registry index when revRegID is set.
func (e *Engine) CreateCredential(ctx context.Context, h engine.WalletHandle, offerDoc, requestDoc,
	valuesDoc json.RawMessage, revRegID string, tails engine.TailsReader) (json.RawMessage, string, json.RawMessage,
	error) {
	if err := ctx.Err(); err != nil {
		return nil, "", nil, err
	}

	w, err := e.wallet(h)
	if err != nil {
		return nil, "", nil, err
	}

	offer := &anoncreds.CredentialOffer{}
	if err = json.Unmarshal(offerDoc, offer); err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid offer: %s", err)
	}

	request := &Request{}
	if err = json.Unmarshal(requestDoc, request); err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid request: %s", err)
	}

	if request.CredDefID != offer.CredDefID {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure,
			"request credential definition %s does not match offer %s", request.CredDefID, offer.CredDefID)
	}

	values := anoncreds.CredentialValues{}
	if err = json.Unmarshal(valuesDoc, &values); err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidStructure, "invalid values: %s", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	credDef := &credDefRecord{}
	if err = getJSON(w.store, fmt.Sprintf(credDefKey, offer.CredDefID), credDef); err != nil {
		return nil, "", nil, err
	}

	if err = checkValues(credDef.AttrNames, values); err != nil {
		return nil, "", nil, err
	}

	credential := anoncreds.Credential{
		SchemaID:  credDef.SchemaID,
		CredDefID: credDef.ID,
		RevRegID:  revRegID,
		Values:    values,
	}

	var credRevID string

	var delta json.RawMessage

	if revRegID != "" {
		credRevID, delta, err = issueIndex(w.store, credDef, revRegID, tails)
		if err != nil {
			return nil, "", nil, err
		}

		credential.Witness, err = json.Marshal(map[string]string{"index": credRevID})
		if err != nil {
			return nil, "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
		}
	}

	credential.Signature, err = json.Marshal(map[string]string{
		"sig": sign(credDef.Secret, values, request.Nonce, credRevID),
	})
	if err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	doc, err := json.Marshal(credential)
	if err != nil {
		return nil, "", nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	return doc, credRevID, delta, nil
}

// RevokeCredential revokes an issued, not yet revoked index.
func (e *Engine) RevokeCredential(ctx context.Context, h engine.WalletHandle, tails engine.TailsReader,
	revRegID, credRevID string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, err := e.wallet(h)
	if err != nil {
		return nil, err
	}

	idx, err := strconv.Atoi(credRevID)
	if err != nil || idx < 0 {
		return nil, engine.NewError(engine.CommonInvalidStructure, "invalid credential revocation id '%s'", credRevID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	reg := &revRegRecord{}
	if err = getJSON(w.store, fmt.Sprintf(revRegKey, revRegID), reg); err != nil {
		return nil, err
	}

	if err = checkTails(reg, tails); err != nil {
		return nil, err
	}

	if !reg.issued(idx) {
		return nil, engine.NewError(engine.AnoncredsInvalidUserRevocID, "index %d was never issued", idx)
	}

	if reg.Revoked[idx] {
		return nil, engine.NewError(engine.AnoncredsInvalidUserRevocID, "index %d is already revoked", idx)
	}

	prev := reg.Accum
	reg.Accum = nextAccum(prev, "revoke", idx)
	reg.Revoked[idx] = true

	if err = putJSON(w.store, fmt.Sprintf(revRegKey, revRegID), reg); err != nil {
		return nil, err
	}

	return marshalDelta(anoncreds.RevocationDeltaValue{PrevAccum: prev, Accum: reg.Accum, Revoked: []int{idx}})
}

// CreateAndStoreRevocationRegistry creates a registry, writes its tails and stores it.
func (e *Engine) CreateAndStoreRevocationRegistry(ctx context.Context, h engine.WalletHandle, originDID,
	revocDefType, tag, credDefID string, cfg engine.RevRegConfig,
	writer engine.TailsWriter) (string, json.RawMessage, json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, nil, err
	}

	w, err := e.wallet(h)
	if err != nil {
		return "", nil, nil, err
	}

	if revocDefType != anoncreds.DefaultRevocationType {
		return "", nil, nil, engine.NewError(engine.CommonInvalidParam, "unsupported revocation type '%s'", revocDefType)
	}

	if cfg.MaxCredNum <= 0 {
		return "", nil, nil, engine.NewError(engine.CommonInvalidParam, "max_cred_num must be positive")
	}

	issuanceType := anoncreds.IssuanceType(cfg.IssuanceType)
	if issuanceType == "" {
		issuanceType = anoncreds.DefaultIssuanceType
	}

	if !issuanceType.Valid() {
		return "", nil, nil, engine.NewError(engine.CommonInvalidStructure, "unknown issuance type '%s'", issuanceType)
	}

	if writer == nil {
		return "", nil, nil, engine.NewError(engine.CommonInvalidParam, "tails writer is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	credDef := &credDefRecord{}
	if err = getJSON(w.store, fmt.Sprintf(credDefKey, credDefID), credDef); err != nil {
		return "", nil, nil, err
	}

	if !credDef.SupportRevocation {
		return "", nil, nil, engine.NewError(engine.AnoncredsRevocationNotSupported,
			"credential definition %s does not support revocation", credDefID)
	}

	id := ids.RevocationRegistryID(originDID, credDefID, revocDefType, tag)

	if _, err = w.store.Get(fmt.Sprintf(revRegKey, id)); err == nil {
		return "", nil, nil, engine.NewError(engine.WalletItemAlreadyExists, "revocation registry %s exists", id)
	}

	location, hash, err := writer.Write(ctx, tailsData(credDef.Secret, id, cfg.MaxCredNum))
	if err != nil {
		return "", nil, nil, engine.NewError(engine.CommonIOError, "write tails: %s", err)
	}

	reg := &revRegRecord{
		ID:           id,
		CredDefID:    credDefID,
		MaxCredNum:   cfg.MaxCredNum,
		IssuanceType: issuanceType,
		Accum:        digest(credDef.Secret, "accum:"+id+":"+string(issuanceType)),
		TailsHash:    hash,
		Revoked:      map[int]bool{},
	}

	def := anoncreds.RevocationRegistryDefinition{
		Ver:          anoncreds.DocumentVersion,
		ID:           id,
		RevocDefType: revocDefType,
		Tag:          tag,
		CredDefID:    credDefID,
		Value: anoncreds.RevocationRegistryDefinitionValue{
			IssuanceType:  issuanceType,
			MaxCredNum:    cfg.MaxCredNum,
			TailsHash:     hash,
			TailsLocation: location,
		},
	}

	def.Value.PublicKeys, err = json.Marshal(map[string]string{"accumKey": digest(credDef.Secret, "accumKey:"+id)})
	if err != nil {
		return "", nil, nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	entry := anoncreds.RevocationRegistryEntry{Ver: anoncreds.DocumentVersion}
	entry.Value.Accum = reg.Accum

	defDoc, err := json.Marshal(def)
	if err != nil {
		return "", nil, nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	entryDoc, err := json.Marshal(entry)
	if err != nil {
		return "", nil, nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	if err = putJSON(w.store, fmt.Sprintf(revRegKey, id), reg); err != nil {
		return "", nil, nil, err
	}

	logger.Debugf("stored revocation registry %s (%d credentials, %s)", id, cfg.MaxCredNum, issuanceType)

	return id, defDoc, entryDoc, nil
}

func issueIndex(store storage.Store, credDef *credDefRecord, revRegID string,
	tails engine.TailsReader) (string, json.RawMessage, error) {
	if !credDef.SupportRevocation {
		return "", nil, engine.NewError(engine.AnoncredsRevocationNotSupported,
			"credential definition %s does not support revocation", credDef.ID)
	}

	reg := &revRegRecord{}
	if err := getJSON(store, fmt.Sprintf(revRegKey, revRegID), reg); err != nil {
		return "", nil, err
	}

	if reg.CredDefID != credDef.ID {
		return "", nil, engine.NewError(engine.CommonInvalidStructure,
			"revocation registry %s belongs to %s", revRegID, reg.CredDefID)
	}

	if err := checkTails(reg, tails); err != nil {
		return "", nil, err
	}

	if reg.Next >= reg.MaxCredNum {
		return "", nil, engine.NewError(engine.AnoncredsRevocationRegistryFull,
			"revocation registry %s is full", revRegID)
	}

	idx := reg.Next
	reg.Next++

	value := anoncreds.RevocationDeltaValue{PrevAccum: reg.Accum, Accum: reg.Accum}

	if reg.IssuanceType == anoncreds.IssuanceOnDemand {
		reg.Accum = nextAccum(reg.Accum, "issue", idx)
		value.Accum = reg.Accum
		value.Issued = []int{idx}
	}

	if err := putJSON(store, fmt.Sprintf(revRegKey, revRegID), reg); err != nil {
		return "", nil, err
	}

	delta, err := marshalDelta(value)
	if err != nil {
		return "", nil, err
	}

	return strconv.Itoa(idx), delta, nil
}

func (r *revRegRecord) issued(idx int) bool {
	return idx >= 0 && idx < r.Next
}

func checkTails(reg *revRegRecord, tails engine.TailsReader) error {
	if tails == nil {
		return engine.NewError(engine.CommonInvalidParam, "tails reader is required")
	}

	if tails.Hash() != reg.TailsHash {
		return engine.NewError(engine.CommonInvalidStructure,
			"tails %s do not belong to revocation registry %s", tails.Hash(), reg.ID)
	}

	return nil
}

func checkValues(attrNames []string, values anoncreds.CredentialValues) error {
	if len(values) != len(attrNames) {
		return engine.NewError(engine.CommonInvalidStructure,
			"credential values do not match schema attributes %v", attrNames)
	}

	for _, name := range attrNames {
		if _, ok := values[name]; !ok {
			return engine.NewError(engine.CommonInvalidStructure, "credential values miss attribute '%s'", name)
		}
	}

	return nil
}

func marshalDelta(value anoncreds.RevocationDeltaValue) (json.RawMessage, error) {
	doc, err := json.Marshal(anoncreds.RevocationDelta{Ver: anoncreds.DocumentVersion, Value: value})
	if err != nil {
		return nil, engine.NewError(engine.CommonInvalidState, "%s", err)
	}

	return doc, nil
}

func primaryKey(secret string, attrNames []string) map[string]interface{} {
	r := make(map[string]string, len(attrNames))
	for _, attr := range attrNames {
		r[attr] = digest(secret, "r:"+attr)
	}

	return map[string]interface{}{
		"n": digest(secret, "n"),
		"s": digest(secret, "s"),
		"r": r,
	}
}

func sign(secret string, values anoncreds.CredentialValues, nonce, credRevID string) string {
	mac := hmac.New(sha256.New, []byte(secret))

	names := maps.Keys(values)
	slices.Sort(names)

	for _, name := range names {
		fmt.Fprintf(mac, "%s=%s;", name, values[name].Encoded)
	}

	fmt.Fprintf(mac, "nonce=%s;rev=%s", nonce, credRevID)

	return hex.EncodeToString(mac.Sum(nil))
}

func digest(secret, label string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(label)) //nolint:errcheck

	return hex.EncodeToString(mac.Sum(nil))
}

func nextAccum(prev, op string, idx int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", prev, op, idx)))

	return hex.EncodeToString(sum[:])
}

func tailsData(secret, revRegID string, maxCredNum int) []byte {
	data := make([]byte, 0, maxCredNum*tailSize)

	for i := 0; i < maxCredNum; i++ {
		tail := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", secret, revRegID, i)))
		data = append(data, tail[:]...)
	}

	return data
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)

	if _, err := rand.Read(b); err != nil {
		return "", engine.NewError(engine.CommonIOError, "read random: %s", err)
	}

	return hex.EncodeToString(b), nil
}

func newNonce() (string, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), nonceBits))
	if err != nil {
		return "", engine.NewError(engine.CommonIOError, "read random: %s", err)
	}

	return n.String(), nil
}

func getJSON(store storage.Store, key string, v interface{}) error {
	data, err := store.Get(key)
	if errors.Is(err, storage.ErrDataNotFound) {
		return engine.NewError(engine.WalletItemNotFound, "%s not found", key)
	}

	if err != nil {
		return engine.NewError(engine.CommonIOError, "get %s: %s", key, err)
	}

	if err = json.Unmarshal(data, v); err != nil {
		return engine.NewError(engine.CommonInvalidState, "decode %s: %s", key, err)
	}

	return nil
}

func putJSON(store storage.Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return engine.NewError(engine.CommonInvalidState, "encode %s: %s", key, err)
	}

	if err = store.Put(key, data); err != nil {
		return engine.NewError(engine.CommonIOError, "put %s: %s", key, err)
	}

	return nil
}

var _ engine.Engine = (*Engine)(nil)
