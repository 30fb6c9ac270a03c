/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package memengine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hyperledger/aries-framework-go/component/storage/leveldb"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/ids"
	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/tails"
)

const originDID = "did:sov:LjgpST2rjsoxYegQDRm7EL"

type fixture struct {
	engine    *Engine
	wallet    engine.WalletHandle
	schema    *anoncreds.Schema
	credDefID string
	baseDir   string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	e := New(opts...)

	w, err := e.OpenWallet("issuer")
	require.NoError(t, err)

	_, doc, err := e.CreateSchema(context.Background(), originDID, "degree", "1.0", []string{"name", "age"})
	require.NoError(t, err)

	schema := &anoncreds.Schema{}
	require.NoError(t, json.Unmarshal(doc, schema))

	schema.SeqNo = 15
	schemaDoc, err := json.Marshal(schema)
	require.NoError(t, err)

	credDefID, _, err := e.CreateAndStoreCredentialDefinition(context.Background(), w, originDID, schemaDoc,
		"default", "CL", engine.CredDefConfig{SupportRevocation: true})
	require.NoError(t, err)

	return &fixture{engine: e, wallet: w, schema: schema, credDefID: credDefID, baseDir: t.TempDir()}
}

func (f *fixture) createRegistry(t *testing.T, tag string, maxCredNum int,
	issuanceType anoncreds.IssuanceType) (string, engine.TailsReader, *anoncreds.RevocationRegistryDefinition,
	string) {
	t.Helper()

	storage := tails.NewStorage()

	w, err := storage.OpenWriter(engine.TailsConfig{BaseDir: f.baseDir})
	require.NoError(t, err)

	defer func() { require.NoError(t, w.Close()) }()

	id, defDoc, entryDoc, err := f.engine.CreateAndStoreRevocationRegistry(context.Background(), f.wallet, originDID,
		anoncreds.DefaultRevocationType, tag, f.credDefID,
		engine.RevRegConfig{MaxCredNum: maxCredNum, IssuanceType: string(issuanceType)}, w)
	require.NoError(t, err)

	def := &anoncreds.RevocationRegistryDefinition{}
	require.NoError(t, json.Unmarshal(defDoc, def))

	entry := &anoncreds.RevocationRegistryEntry{}
	require.NoError(t, json.Unmarshal(entryDoc, entry))

	reader, err := storage.OpenReader(engine.TailsConfig{BaseDir: f.baseDir}, def.Value.TailsHash)
	require.NoError(t, err)

	return id, reader, def, entry.Value.Accum
}

func (f *fixture) issue(t *testing.T, revRegID string, reader engine.TailsReader) (json.RawMessage, string,
	json.RawMessage, error) {
	t.Helper()

	offerDoc, err := f.engine.CreateCredentialOffer(context.Background(), f.wallet, f.credDefID)
	require.NoError(t, err)

	request := json.RawMessage(`{"prover_did":"did:holder","cred_def_id":"` + f.credDefID + `","nonce":"5"}`)
	values := json.RawMessage(`{"name":{"raw":"Alice","encoded":"1139481716457488690172217916278103335"},` +
		`"age":{"raw":"30","encoded":"30"}}`)

	return f.engine.CreateCredential(context.Background(), f.wallet, offerDoc, request, values, revRegID, reader)
}

func TestEngine_Wallet(t *testing.T) {
	e := New()

	_, err := e.OpenWallet("")
	requireCode(t, err, engine.CommonInvalidParam)

	w, err := e.OpenWallet("w")
	require.NoError(t, err)
	require.NotEqual(t, engine.InvalidWalletHandle, w)

	require.NoError(t, e.CloseWallet(w))
	requireCode(t, e.CloseWallet(w), engine.WalletInvalidHandle)

	_, err = e.CreateCredentialOffer(context.Background(), w, "did:x:3:CL:1:default")
	requireCode(t, err, engine.WalletInvalidHandle)
}

func TestEngine_CreateSchema(t *testing.T) {
	e := New()

	id, doc, err := e.CreateSchema(context.Background(), "did:x", "name", "1.0", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, "did:x:2:name:1.0", id)
	require.JSONEq(t, `{"ver":"1.0","id":"did:x:2:name:1.0","name":"name","version":"1.0","attrNames":["a","b"]}`,
		string(doc))

	_, _, err = e.CreateSchema(context.Background(), "did:x", "name", "1.0", []string{"a", "a"})
	requireCode(t, err, engine.CommonInvalidStructure)

	_, _, err = e.CreateSchema(context.Background(), "did:x", "name", "1.0", nil)
	requireCode(t, err, engine.CommonInvalidStructure)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = e.CreateSchema(ctx, "did:x", "name", "1.0", []string{"a"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_CredentialDefinition(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, originDID+":3:CL:15:default", f.credDefID)

	schemaDoc, err := json.Marshal(f.schema)
	require.NoError(t, err)

	t.Run("already exists", func(t *testing.T) {
		_, _, err := f.engine.CreateAndStoreCredentialDefinition(context.Background(), f.wallet, originDID, schemaDoc,
			"default", "CL", engine.CredDefConfig{})
		requireCode(t, err, engine.AnoncredsCredDefAlreadyExists)
	})

	t.Run("schema without sequence number", func(t *testing.T) {
		_, _, err := f.engine.CreateAndStoreCredentialDefinition(context.Background(), f.wallet, originDID,
			json.RawMessage(`{"id":"x","attrNames":["a"]}`), "t", "CL", engine.CredDefConfig{})
		requireCode(t, err, engine.CommonInvalidStructure)
	})

	t.Run("unsupported signature type", func(t *testing.T) {
		_, _, err := f.engine.CreateAndStoreCredentialDefinition(context.Background(), f.wallet, originDID, schemaDoc,
			"t", "BBS", engine.CredDefConfig{})
		requireCode(t, err, engine.CommonInvalidParam)
	})

	t.Run("offer", func(t *testing.T) {
		doc, err := f.engine.CreateCredentialOffer(context.Background(), f.wallet, f.credDefID)
		require.NoError(t, err)

		offer := &anoncreds.CredentialOffer{}
		require.NoError(t, json.Unmarshal(doc, offer))
		require.Equal(t, f.schema.ID, offer.SchemaID)
		require.NotEmpty(t, offer.Nonce)

		other, err := f.engine.CreateCredentialOffer(context.Background(), f.wallet, f.credDefID)
		require.NoError(t, err)
		require.NotEqual(t, string(doc), string(other))
	})

	t.Run("revocation not supported", func(t *testing.T) {
		plainID, _, err := f.engine.CreateAndStoreCredentialDefinition(context.Background(), f.wallet, originDID,
			schemaDoc, "plain", "CL", engine.CredDefConfig{})
		require.NoError(t, err)

		w, err := tails.NewStorage().OpenWriter(engine.TailsConfig{BaseDir: f.baseDir})
		require.NoError(t, err)

		defer func() { require.NoError(t, w.Close()) }()

		_, _, _, err = f.engine.CreateAndStoreRevocationRegistry(context.Background(), f.wallet, originDID,
			anoncreds.DefaultRevocationType, "0", plainID, engine.RevRegConfig{MaxCredNum: 1}, w)
		requireCode(t, err, engine.AnoncredsRevocationNotSupported)

		offerDoc, err := f.engine.CreateCredentialOffer(context.Background(), f.wallet, plainID)
		require.NoError(t, err)

		_, _, _, err = f.engine.CreateCredential(context.Background(), f.wallet, offerDoc,
			json.RawMessage(`{"prover_did":"did:holder","cred_def_id":"`+plainID+`","nonce":"5"}`),
			json.RawMessage(`{"name":{"raw":"Alice","encoded":"1"},"age":{"raw":"30","encoded":"30"}}`),
			ids.RevocationRegistryID(originDID, plainID, anoncreds.DefaultRevocationType, "0"), nil)
		requireCode(t, err, engine.AnoncredsRevocationNotSupported)
	})

	t.Run("offer lookup codes", func(t *testing.T) {
		_, err := f.engine.CreateCredentialOffer(context.Background(), f.wallet, originDID+":3:CL:16:default")
		requireCode(t, err, engine.WalletItemNotFound)

		_, err = f.engine.CreateCredentialOffer(context.Background(), f.wallet, "not-an-id")
		requireCode(t, err, engine.CommonInvalidStructure)
	})
}

func TestEngine_CreateCredential(t *testing.T) {
	f := newFixture(t)

	cred, credRevID, delta, err := f.issue(t, "", nil)
	require.NoError(t, err)
	require.Empty(t, credRevID)
	require.Nil(t, delta)

	credential := &anoncreds.Credential{}
	require.NoError(t, json.Unmarshal(cred, credential))
	require.Equal(t, f.credDefID, credential.CredDefID)
	require.Equal(t, "30", credential.Values["age"].Encoded)
	require.NotEmpty(t, credential.Signature)

	t.Run("values must match the schema", func(t *testing.T) {
		offerDoc, err := f.engine.CreateCredentialOffer(context.Background(), f.wallet, f.credDefID)
		require.NoError(t, err)

		_, _, _, err = f.engine.CreateCredential(context.Background(), f.wallet, offerDoc,
			json.RawMessage(`{"cred_def_id":"`+f.credDefID+`"}`),
			json.RawMessage(`{"name":{"raw":"a","encoded":"1"}}`), "", nil)
		requireCode(t, err, engine.CommonInvalidStructure)
	})

	t.Run("request for another credential definition", func(t *testing.T) {
		offerDoc, err := f.engine.CreateCredentialOffer(context.Background(), f.wallet, f.credDefID)
		require.NoError(t, err)

		_, _, _, err = f.engine.CreateCredential(context.Background(), f.wallet, offerDoc,
			json.RawMessage(`{"cred_def_id":"did:x:3:CL:1:other"}`), json.RawMessage(`{}`), "", nil)
		requireCode(t, err, engine.CommonInvalidStructure)
	})
}

func TestEngine_RevocationRegistry(t *testing.T) {
	t.Run("issuance by default", func(t *testing.T) {
		f := newFixture(t)
		id, reader, def, accum := f.createRegistry(t, "0", 2, "")

		require.Equal(t, originDID+":4:"+f.credDefID+":CL_ACCUM:0", id)
		require.Equal(t, anoncreds.IssuanceByDefault, def.Value.IssuanceType)
		require.EqualValues(t, 2*tailSize, reader.Size())

		_, credRevID, deltaDoc, err := f.issue(t, id, reader)
		require.NoError(t, err)
		require.Equal(t, "0", credRevID)

		delta, err := anoncreds.ParseRevocationDelta(id, deltaDoc)
		require.NoError(t, err)
		require.Equal(t, accum, delta.PriorAccumulator())
		require.Equal(t, accum, delta.NewAccumulator())

		_, credRevID, _, err = f.issue(t, id, reader)
		require.NoError(t, err)
		require.Equal(t, "1", credRevID)

		_, _, _, err = f.issue(t, id, reader)
		requireCode(t, err, engine.AnoncredsRevocationRegistryFull)
	})

	t.Run("issuance on demand", func(t *testing.T) {
		f := newFixture(t)
		id, reader, _, accum := f.createRegistry(t, "0", 3, anoncreds.IssuanceOnDemand)

		_, credRevID, deltaDoc, err := f.issue(t, id, reader)
		require.NoError(t, err)

		delta, err := anoncreds.ParseRevocationDelta(id, deltaDoc)
		require.NoError(t, err)
		require.Equal(t, accum, delta.PriorAccumulator())
		require.NotEqual(t, accum, delta.NewAccumulator())
		require.Equal(t, []int{0}, delta.Value.Issued)

		revDoc, err := f.engine.RevokeCredential(context.Background(), f.wallet, reader, id, credRevID)
		require.NoError(t, err)

		revoked, err := anoncreds.ParseRevocationDelta(id, revDoc)
		require.NoError(t, err)
		require.Equal(t, delta.NewAccumulator(), revoked.PriorAccumulator())
		require.Equal(t, []int{0}, revoked.Value.Revoked)

		_, err = f.engine.RevokeCredential(context.Background(), f.wallet, reader, id, credRevID)
		requireCode(t, err, engine.AnoncredsInvalidUserRevocID)

		_, err = f.engine.RevokeCredential(context.Background(), f.wallet, reader, id, "2")
		requireCode(t, err, engine.AnoncredsInvalidUserRevocID)

		_, err = f.engine.RevokeCredential(context.Background(), f.wallet, reader, id, "x")
		requireCode(t, err, engine.CommonInvalidStructure)
	})

	t.Run("tails of another registry", func(t *testing.T) {
		f := newFixture(t)
		id, _, _, _ := f.createRegistry(t, "0", 2, "")
		_, otherReader, _, _ := f.createRegistry(t, "1", 3, "")

		_, _, _, err := f.issue(t, id, otherReader)
		requireCode(t, err, engine.CommonInvalidStructure)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		f := newFixture(t)

		w, err := tails.NewStorage().OpenWriter(engine.TailsConfig{BaseDir: f.baseDir})
		require.NoError(t, err)

		_, _, _, err = f.engine.CreateAndStoreRevocationRegistry(context.Background(), f.wallet, originDID,
			"CL_ACCUM", "0", f.credDefID, engine.RevRegConfig{MaxCredNum: 0}, w)
		requireCode(t, err, engine.CommonInvalidParam)

		_, _, _, err = f.engine.CreateAndStoreRevocationRegistry(context.Background(), f.wallet, originDID,
			"CL_ACCUM", "0", f.credDefID, engine.RevRegConfig{MaxCredNum: 1, IssuanceType: "SOMETIMES"}, w)
		requireCode(t, err, engine.CommonInvalidStructure)

		_, _, _, err = f.engine.CreateAndStoreRevocationRegistry(context.Background(), f.wallet, originDID,
			"CL_ACCUM", "0", originDID+":3:CL:99:default", engine.RevRegConfig{MaxCredNum: 1}, w)
		requireCode(t, err, engine.WalletItemNotFound)
	})
}

func TestEngine_LevelDB(t *testing.T) {
	provider := leveldb.NewProvider(t.TempDir())

	defer func() { require.NoError(t, provider.Close()) }()

	f := newFixture(t, WithStorageProvider(provider))

	reopened := New(WithStorageProvider(provider))

	w, err := reopened.OpenWallet("issuer")
	require.NoError(t, err)

	_, err = reopened.CreateCredentialOffer(context.Background(), w, f.credDefID)
	require.NoError(t, err)
}

func requireCode(t *testing.T, err error, code engine.ErrorCode) {
	t.Helper()

	got, ok := engine.CodeOf(err)
	require.True(t, ok, "expected engine error, got %v", err)
	require.Equal(t, code, got, err.Error())
}
