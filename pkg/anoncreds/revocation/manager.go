/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package revocation manages revocation registries: creation with their tails data, and
// serialized mutation of each registry's accumulator.
//
// Every mutation of a registry (issuance against it and revocation) runs under a lock
// keyed by the registry ID. Locks are created on first use and kept for the lifetime of
// the Manager, so unrelated registries never contend.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"
	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/metrics"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/tails"
)

const (
	// Namespace is the store name of registry records.
	Namespace = "anoncreds_revocation"

	credDefTag = "credDef"

	opCreateRegistry = "create_revocation_registry"
	opRevoke         = "revoke_credential"
)

var logger = log.New("aries-framework/anoncreds/revocation")

// Option configures the Manager.
type Option func(m *Manager)

// WithStorageProvider sets the provider registry records are kept in. Defaults to an
// in-memory provider.
func WithStorageProvider(p storage.Provider) Option {
	return func(m *Manager) {
		m.provider = p
	}
}

// WithBlobStorage sets the tails blob storage. Defaults to the file system storage.
func WithBlobStorage(b engine.BlobStorage) Option {
	return func(m *Manager) {
		m.blobs = b
	}
}

// WithMetrics sets the metrics the manager records into.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// RegistryConfig holds the parameters of a new revocation registry.
type RegistryConfig struct {
	OriginDID     string
	CredDefID     string
	RevocDefType  string
	Tag           string
	MaxCredNum    int
	TailsBasePath string
	URIPattern    string
	IssuanceType  anoncreds.IssuanceType
}

// Manager creates revocation registries and serializes their mutation.
type Manager struct {
	engine   engine.Engine
	wallet   engine.WalletHandle
	provider storage.Provider
	store    storage.Store
	blobs    engine.BlobStorage
	metrics  *metrics.Metrics

	mu    sync.Mutex
	locks map[string]chan struct{}
}

// New creates a Manager operating on the given engine and wallet.
func New(e engine.Engine, wallet engine.WalletHandle, opts ...Option) (*Manager, error) {
	m := &Manager{
		engine: e,
		wallet: wallet,
		locks:  map[string]chan struct{}{},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		m.provider = mem.NewProvider()
	}

	if m.blobs == nil {
		m.blobs = tails.NewStorage()
	}

	store, err := m.provider.OpenStore(Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	m.store = store

	return m, nil
}

// CreateRegistry opens a tails writer, has the engine create the registry and its initial
// accumulator, and records the registry. It returns the registry ID, the registry
// definition document and the initial registry entry document.
//
// Once the engine has created the registry the call succeeds: a record that cannot be
// built from the engine documents or saved is logged and left partial or missing.
func (m *Manager) CreateRegistry(ctx context.Context, cfg RegistryConfig) (string, json.RawMessage,
	json.RawMessage, error) {
	start := time.Now()

	if cfg.RevocDefType == "" {
		cfg.RevocDefType = anoncreds.DefaultRevocationType
	}

	if cfg.IssuanceType == "" {
		cfg.IssuanceType = anoncreds.DefaultIssuanceType
	}

	writer, err := m.blobs.OpenWriter(engine.TailsConfig{BaseDir: cfg.TailsBasePath, URIPattern: cfg.URIPattern})
	if err != nil {
		m.metrics.RecordOperation(opCreateRegistry, metrics.OutcomeError, start)

		return "", nil, nil, anoncreds.Translate(err, "Error opening tails writer")
	}

	defer func() {
		if closeErr := writer.Close(); closeErr != nil {
			logger.Warnf("failed to close tails writer: %s", closeErr)
		}
	}()

	id, def, entry, err := m.engine.CreateAndStoreRevocationRegistry(ctx, m.wallet, cfg.OriginDID,
		cfg.RevocDefType, cfg.Tag, cfg.CredDefID,
		engine.RevRegConfig{MaxCredNum: cfg.MaxCredNum, IssuanceType: string(cfg.IssuanceType)}, writer)
	if err != nil {
		err = anoncreds.TranslateContext(ctx, err, "Error creating revocation registry")
		m.metrics.RecordOperation(opCreateRegistry, outcome(err), start)

		return "", nil, nil, err
	}

	if err = m.put(newRecord(id, cfg, def, entry)); err != nil {
		logger.Errorf("created revocation registry %s but failed to record it: %s", id, err)
	}

	m.metrics.RecordOperation(opCreateRegistry, metrics.OutcomeSuccess, start)

	logger.Infof("created revocation registry %s for %s", id, cfg.CredDefID)

	return id, def, entry, nil
}

// IssueFunc issues one credential against a locked registry and returns the engine delta.
type IssueFunc func(ctx context.Context) (delta json.RawMessage, err error)

// Issue runs issue while holding the lock of revRegID and applies the resulting delta to
// the registry record. Errors are returned as issuer errors. Every successful issuance
// counts against the record; the accumulator only moves when the delta carries one.
func (m *Manager) Issue(ctx context.Context, revRegID string, tailsReader engine.TailsReader,
	issue IssueFunc) error {
	unlock, err := m.lock(ctx, revRegID)
	if err != nil {
		return err
	}

	defer unlock()

	record, err := m.checkTails(revRegID, tailsReader)
	if err != nil {
		return err
	}

	doc, err := issue(ctx)
	if err != nil {
		err = anoncreds.TranslateContext(ctx, err, "Error when issuing credential")

		if anoncreds.IsRevocationRegistryFull(err) {
			m.metrics.IncrementRegistriesFull()
			m.markFull(record)
		}

		return err
	}

	if record == nil {
		return nil
	}

	record.IssuedCount++

	if len(doc) > 0 {
		delta, parseErr := anoncreds.ParseRevocationDelta(revRegID, doc)
		if parseErr != nil {
			logger.Errorf("issued against %s with unreadable delta: %s", revRegID, parseErr)
		} else {
			updateAccumulator(record, delta)
		}
	}

	if record.IssuedCount >= record.MaxCredNum {
		record.State = anoncreds.RegistryStateFull
	}

	m.save(record)

	return nil
}

// Revoke revokes credRevID in revRegID under the registry lock and returns the delta.
//
// An error of kind anoncreds.ErrUnreadableDelta means the engine revoked the credential
// but its delta could not be parsed. The registry record keeps its previous accumulator
// and the revocation must not be retried.
func (m *Manager) Revoke(ctx context.Context, revRegID string, tailsReader engine.TailsReader,
	credRevID string) (*anoncreds.RevocationDelta, error) {
	start := time.Now()

	unlock, err := m.lock(ctx, revRegID)
	if err != nil {
		m.metrics.RecordOperation(opRevoke, metrics.OutcomeError, start)

		return nil, err
	}

	defer unlock()

	record, err := m.checkTails(revRegID, tailsReader)
	if err != nil {
		m.metrics.RecordOperation(opRevoke, metrics.OutcomeError, start)

		return nil, err
	}

	doc, err := m.engine.RevokeCredential(ctx, m.wallet, tailsReader, revRegID, credRevID)
	if err != nil {
		err = anoncreds.TranslateContext(ctx, err, "Error revoking credential")
		m.metrics.RecordOperation(opRevoke, outcome(err), start)

		return nil, err
	}

	m.metrics.IncrementRevocations()

	delta, err := anoncreds.ParseRevocationDelta(revRegID, doc)
	if err != nil {
		m.metrics.RecordOperation(opRevoke, metrics.OutcomeError, start)

		return nil, &anoncreds.Error{
			Kind: anoncreds.ErrUnreadableDelta,
			Msg:  fmt.Sprintf("Credential %s revoked in %s but its revocation delta is unreadable", credRevID, revRegID),
			Err:  err,
		}
	}

	if record != nil && updateAccumulator(record, delta) {
		m.save(record)
	}

	m.metrics.RecordOperation(opRevoke, metrics.OutcomeSuccess, start)

	logger.Debugf("revoked %s in %s", credRevID, revRegID)

	return delta, nil
}

// Registry returns the record of a registry created through this manager.
func (m *Manager) Registry(_ context.Context, revRegID string) (*anoncreds.RevocationRegistry, error) {
	record, err := m.get(revRegID)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, &anoncreds.Error{Kind: anoncreds.ErrNotFound, Msg: "Error loading revocation registry", Err: err}
	}

	if err != nil {
		return nil, anoncreds.Translate(err, "Error loading revocation registry")
	}

	return record, nil
}

// Registries returns the records of every registry of a credential definition.
func (m *Manager) Registries(_ context.Context, credDefID string) ([]*anoncreds.RevocationRegistry, error) {
	iter, err := m.store.Query(credDefTag + ":" + tagValue(credDefID))
	if err != nil {
		return nil, anoncreds.Translate(err, "Error querying revocation registries")
	}

	defer func() {
		if closeErr := iter.Close(); closeErr != nil {
			logger.Warnf("failed to close iterator: %s", closeErr)
		}
	}()

	var records []*anoncreds.RevocationRegistry

	more, err := iter.Next()

	for ; more && err == nil; more, err = iter.Next() {
		value, valErr := iter.Value()
		if valErr != nil {
			return nil, anoncreds.Translate(valErr, "Error querying revocation registries")
		}

		record := &anoncreds.RevocationRegistry{}
		if valErr = json.Unmarshal(value, record); valErr != nil {
			return nil, anoncreds.Translate(valErr, "Error querying revocation registries")
		}

		records = append(records, record)
	}

	if err != nil {
		return nil, anoncreds.Translate(err, "Error querying revocation registries")
	}

	return records, nil
}

// lock acquires the lock of revRegID, giving up when ctx is done. Nothing has been
// attempted when waiting fails, so the error is a definite failure.
func (m *Manager) lock(ctx context.Context, revRegID string) (func(), error) {
	m.mu.Lock()

	l, ok := m.locks[revRegID]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[revRegID] = l
	}

	m.mu.Unlock()

	start := time.Now()

	select {
	case l <- struct{}{}:
		m.metrics.ObserveLockWait(time.Since(start))

		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, &anoncreds.Error{
			Kind: anoncreds.ErrIssuer,
			Msg:  fmt.Sprintf("Error waiting for revocation registry %s", revRegID),
			Err:  ctx.Err(),
		}
	}
}

// checkTails rejects a tails reader whose hash differs from the recorded one. Registries
// without a record or a recorded hash are left to the engine.
func (m *Manager) checkTails(revRegID string, tailsReader engine.TailsReader) (*anoncreds.RevocationRegistry,
	error) {
	record, err := m.get(revRegID)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, anoncreds.Translate(err, "Error loading revocation registry")
	}

	if tailsReader != nil && record.TailsHash != "" && tailsReader.Hash() != record.TailsHash {
		return nil, anoncreds.NewError(anoncreds.ErrTailsMismatch, fmt.Sprintf(
			"tails %s do not belong to revocation registry %s", tailsReader.Hash(), revRegID))
	}

	return record, nil
}

func (m *Manager) markFull(record *anoncreds.RevocationRegistry) {
	if record == nil {
		return
	}

	record.State = anoncreds.RegistryStateFull
	m.save(record)
}

// save persists a record after the engine committed a change. The engine is
// authoritative, so a failure here only leaves the record stale.
func (m *Manager) save(record *anoncreds.RevocationRegistry) {
	if err := m.put(record); err != nil {
		logger.Errorf("failed to update revocation registry %s: %s", record.ID, err)
	}
}

func (m *Manager) get(revRegID string) (*anoncreds.RevocationRegistry, error) {
	data, err := m.store.Get(revRegID)
	if err != nil {
		return nil, err
	}

	record := &anoncreds.RevocationRegistry{}
	if err = json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("decode revocation registry: %w", err)
	}

	return record, nil
}

func (m *Manager) put(record *anoncreds.RevocationRegistry) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode revocation registry: %w", err)
	}

	return m.store.Put(record.ID, data, storage.Tag{Name: credDefTag, Value: tagValue(record.CredDefID)})
}

// updateAccumulator moves the record to the accumulator of delta, if it has one.
func updateAccumulator(record *anoncreds.RevocationRegistry, delta *anoncreds.RevocationDelta) bool {
	accum := delta.NewAccumulator()
	if accum == "" {
		return false
	}

	record.Accumulator = accum

	return true
}

// newRecord builds the record of a created registry. Fields of an unreadable document stay
// empty.
func newRecord(id string, cfg RegistryConfig, defDoc, entryDoc json.RawMessage) *anoncreds.RevocationRegistry {
	def := &anoncreds.RevocationRegistryDefinition{}
	if err := json.Unmarshal(defDoc, def); err != nil {
		logger.Errorf("failed to parse definition of revocation registry %s: %s", id, err)
	}

	entry := &anoncreds.RevocationRegistryEntry{}
	if err := json.Unmarshal(entryDoc, entry); err != nil {
		logger.Errorf("failed to parse initial entry of revocation registry %s: %s", id, err)
	}

	return &anoncreds.RevocationRegistry{
		ID:            id,
		CredDefID:     cfg.CredDefID,
		RevocDefType:  cfg.RevocDefType,
		Tag:           cfg.Tag,
		MaxCredNum:    cfg.MaxCredNum,
		IssuanceType:  cfg.IssuanceType,
		Accumulator:   entry.Value.Accum,
		TailsLocation: def.Value.TailsLocation,
		TailsHash:     def.Value.TailsHash,
		State:         anoncreds.RegistryStateActive,
	}
}

// tagValue makes an identifier usable as a tag value; store queries split on colons.
func tagValue(id string) string {
	digest := sha256.Sum256([]byte(id))

	return base58.Encode(digest[:])
}

func outcome(err error) string {
	switch {
	case errors.Is(err, anoncreds.ErrRevocationRegistryFull):
		return metrics.OutcomeRegistryFull
	case errors.Is(err, anoncreds.ErrOutcomeUnknown):
		return metrics.OutcomeUnknown
	default:
		return metrics.OutcomeError
	}
}
