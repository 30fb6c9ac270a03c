/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
)

func TestTranslate(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.NoError(t, Translate(nil, "msg"))
	})

	tests := []struct {
		name string
		code engine.ErrorCode
		kind error
	}{
		{name: "registry full", code: engine.AnoncredsRevocationRegistryFull, kind: ErrRevocationRegistryFull},
		{name: "not found", code: engine.WalletItemNotFound, kind: ErrNotFound},
		{name: "invalid structure", code: engine.CommonInvalidStructure, kind: ErrMalformed},
		{name: "invalid revocation index", code: engine.AnoncredsInvalidUserRevocID, kind: ErrInvalidRevocationIndex},
		{name: "revocation not supported", code: engine.AnoncredsRevocationNotSupported, kind: ErrRevocationNotSupported},
		{name: "unrecognized", code: engine.CommonIOError, kind: ErrIssuer},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cause := engine.NewError(tc.code, "engine says no")
			err := Translate(cause, "Error when doing things")

			require.True(t, errors.Is(err, tc.kind))
			require.True(t, errors.Is(err, ErrIssuer))
			require.EqualError(t, err, "Error when doing things: engine says no")

			var issuerErr *Error
			require.True(t, errors.As(err, &issuerErr))
			require.Equal(t, cause, issuerErr.Unwrap())
		})
	}

	t.Run("registry full is distinct from generic failure", func(t *testing.T) {
		err := Translate(engine.NewError(engine.CommonIOError, "io"), "msg")
		require.False(t, IsRevocationRegistryFull(err))

		err = Translate(engine.NewError(engine.AnoncredsRevocationRegistryFull, "full"), "msg")
		require.True(t, IsRevocationRegistryFull(err))
	})

	t.Run("foreign error", func(t *testing.T) {
		err := Translate(errors.New("boom"), "msg")
		require.EqualError(t, err, "msg: boom")
		require.True(t, errors.Is(err, ErrIssuer))
		require.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("issuer errors pass through", func(t *testing.T) {
		orig := NewError(ErrMissingAttribute, "missing")
		require.Equal(t, orig, Translate(orig, "msg"))
	})

	t.Run("context cancellation", func(t *testing.T) {
		err := Translate(fmt.Errorf("call: %w", context.Canceled), "msg")
		require.True(t, errors.Is(err, ErrOutcomeUnknown))
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestTranslateContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("unrecognized failure after cancel", func(t *testing.T) {
		err := TranslateContext(ctx, engine.NewError(engine.CommonIOError, "io"), "msg")
		require.True(t, errors.Is(err, ErrOutcomeUnknown))
	})

	t.Run("recognized failure stays definitive", func(t *testing.T) {
		err := TranslateContext(ctx, engine.NewError(engine.AnoncredsRevocationRegistryFull, "full"), "msg")
		require.True(t, errors.Is(err, ErrRevocationRegistryFull))
		require.False(t, errors.Is(err, ErrOutcomeUnknown))
	})

	t.Run("live context", func(t *testing.T) {
		err := TranslateContext(context.Background(), engine.NewError(engine.CommonIOError, "io"), "msg")
		require.False(t, errors.Is(err, ErrOutcomeUnknown))
		require.NoError(t, TranslateContext(ctx, nil, "msg"))
	})
}
