/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"errors"
	"fmt"
)

// ErrorCode identifies an engine failure. Values follow the Indy SDK numbering so that
// engines wrapping libindy-compatible libraries can pass codes straight through.
type ErrorCode int

// Engine error codes.
const (
	CommonInvalidParam              ErrorCode = 100
	CommonInvalidState              ErrorCode = 112
	CommonInvalidStructure          ErrorCode = 113
	CommonIOError                   ErrorCode = 114
	WalletInvalidHandle             ErrorCode = 200
	WalletItemNotFound              ErrorCode = 212
	WalletItemAlreadyExists         ErrorCode = 213
	AnoncredsRevocationRegistryFull ErrorCode = 401
	AnoncredsInvalidUserRevocID     ErrorCode = 402
	AnoncredsCredDefAlreadyExists   ErrorCode = 407
	// AnoncredsRevocationNotSupported has no Indy SDK counterpart: the credential
	// definition has no revocation key, or the engine cannot revoke at all.
	AnoncredsRevocationNotSupported ErrorCode = 1000
)

var codeNames = map[ErrorCode]string{ //nolint:gochecknoglobals
	CommonInvalidParam:              "CommonInvalidParam",
	CommonInvalidState:              "CommonInvalidState",
	CommonInvalidStructure:          "CommonInvalidStructure",
	CommonIOError:                   "CommonIOError",
	WalletInvalidHandle:             "WalletInvalidHandle",
	WalletItemNotFound:              "WalletItemNotFound",
	WalletItemAlreadyExists:         "WalletItemAlreadyExists",
	AnoncredsRevocationRegistryFull: "AnoncredsRevocationRegistryFull",
	AnoncredsInvalidUserRevocID:     "AnoncredsInvalidUserRevocId",
	AnoncredsCredDefAlreadyExists:   "AnoncredsCredDefAlreadyExists",
	AnoncredsRevocationNotSupported: "AnoncredsRevocationNotSupported",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error is a failure reported by an engine.
type Error struct {
	Code    ErrorCode
	Message string
}

// NewError creates an engine error with a formatted message.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the engine error code carried by err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Code, true
	}

	return 0, false
}
