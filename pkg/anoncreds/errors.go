/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anoncreds

import (
	"context"
	"errors"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
)

// Error kinds. Every *Error matches ErrIssuer; the others single out the cases a caller
// can act on.
var (
	// ErrIssuer is the generic issuance failure.
	ErrIssuer = errors.New("issuer error")
	// ErrRevocationRegistryFull means the registry has no free index left and must be rotated.
	ErrRevocationRegistryFull = errors.New("revocation registry full")
	// ErrMissingAttribute means holder-supplied values omit a schema attribute.
	ErrMissingAttribute = errors.New("missing credential attribute")
	// ErrNotFound means the engine has no item under the given identifier.
	ErrNotFound = errors.New("item not found")
	// ErrMalformed means the engine rejected an identifier or document as malformed.
	ErrMalformed = errors.New("malformed input")
	// ErrInvalidRevocationIndex means the index was never issued or is already revoked.
	ErrInvalidRevocationIndex = errors.New("invalid credential revocation index")
	// ErrOutcomeUnknown means the call was cancelled while the engine was working; the
	// mutation may or may not have committed and state must be re-queried.
	ErrOutcomeUnknown = errors.New("operation outcome unknown")
	// ErrTailsMismatch means a tails reader does not belong to the target registry.
	ErrTailsMismatch = errors.New("tails reader does not match revocation registry")
	// ErrRevocationNotSupported means a revocation operation was attempted on a credential
	// definition, or with an engine, that has no revocation support.
	ErrRevocationNotSupported = errors.New("revocation not supported")
	// ErrUnreadableDelta means the engine committed a registry change but returned a delta
	// that cannot be parsed. The change stands and must not be retried.
	ErrUnreadableDelta = errors.New("revocation delta unreadable")
)

// Error is the issuer error. It carries a kind for classification and the original
// collaborator failure as its cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

// NewError creates an issuer error of the given kind without an underlying cause.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}

	var engineErr *engine.Error
	if errors.As(e.Err, &engineErr) && engineErr.Message != "" {
		return e.Msg + ": " + engineErr.Message
	}

	return e.Msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIssuer or the kind of this error.
func (e *Error) Is(target error) bool {
	if target == ErrIssuer {
		return true
	}

	return e.Kind != nil && target == e.Kind
}

// Translate is the single point where collaborator failures become issuer errors.
// Recognized engine codes map to their kinds, cancellation maps to ErrOutcomeUnknown,
// everything else becomes a generic ErrIssuer. The cause is always preserved.
func Translate(err error, msg string) error {
	if err == nil {
		return nil
	}

	var issuerErr *Error
	if errors.As(err, &issuerErr) {
		return err
	}

	return &Error{Kind: kindOf(err), Msg: msg, Err: err}
}

// TranslateContext is Translate for calls made under ctx. An unrecognized failure
// observed after ctx was cancelled is reported as ErrOutcomeUnknown; recognized engine
// codes stay definitive.
func TranslateContext(ctx context.Context, err error, msg string) error {
	translated := Translate(err, msg)
	if translated == nil || ctx.Err() == nil {
		return translated
	}

	var issuerErr *Error
	if errors.As(translated, &issuerErr) && issuerErr.Kind == ErrIssuer {
		return &Error{Kind: ErrOutcomeUnknown, Msg: issuerErr.Msg, Err: issuerErr.Err}
	}

	return translated
}

func kindOf(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrOutcomeUnknown
	}

	code, ok := engine.CodeOf(err)
	if !ok {
		return ErrIssuer
	}

	switch code { //nolint:exhaustive
	case engine.AnoncredsRevocationRegistryFull:
		return ErrRevocationRegistryFull
	case engine.WalletItemNotFound:
		return ErrNotFound
	case engine.CommonInvalidStructure:
		return ErrMalformed
	case engine.AnoncredsInvalidUserRevocID:
		return ErrInvalidRevocationIndex
	case engine.AnoncredsRevocationNotSupported:
		return ErrRevocationNotSupported
	default:
		return ErrIssuer
	}
}

// IsRevocationRegistryFull reports whether err signals an exhausted revocation registry.
func IsRevocationRegistryFull(err error) bool {
	return errors.Is(err, ErrRevocationRegistryFull)
}
