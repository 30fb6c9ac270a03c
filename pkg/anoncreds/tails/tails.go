/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package tails is a file based, write-once blob storage for revocation tails data.
//
// Blobs are content addressed: a blob is stored under the base58 encoding of the SHA-256
// digest of its content, which is also the tails hash published in the registry definition.
package tails

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
)

const (
	hashPlaceholder = "{hash}"
	dirPerm         = 0o700
	filePerm        = 0o600
)

var logger = log.New("aries-framework/anoncreds/tails")

var (
	// ErrWriterClosed is returned when writing through a closed writer.
	ErrWriterClosed = errors.New("tails writer is closed")
	// ErrAlreadyWritten is returned on a second write through the same writer.
	ErrAlreadyWritten = errors.New("tails writer already used")
	// ErrHashMismatch is returned when stored tails data does not match its hash.
	ErrHashMismatch = errors.New("tails data does not match its hash")
)

// Storage opens tails writers and readers on the local file system.
type Storage struct{}

// NewStorage returns a file system tails storage.
func NewStorage() *Storage {
	return &Storage{}
}

// Hash returns the tails hash of data.
func Hash(data []byte) string {
	digest := sha256.Sum256(data)

	return base58.Encode(digest[:])
}

// Location returns where a blob with the given hash is published for cfg.
func Location(cfg engine.TailsConfig, hash string) string {
	if cfg.URIPattern == "" {
		return filepath.Join(cfg.BaseDir, hash)
	}

	if strings.Contains(cfg.URIPattern, hashPlaceholder) {
		return strings.ReplaceAll(cfg.URIPattern, hashPlaceholder, hash)
	}

	return strings.TrimSuffix(cfg.URIPattern, "/") + "/" + hash
}

// OpenWriter opens a writer scoped to cfg.BaseDir, creating the directory if needed.
func (s *Storage) OpenWriter(cfg engine.TailsConfig) (engine.TailsWriter, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("tails base dir is required")
	}

	if err := os.MkdirAll(cfg.BaseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create tails dir: %w", err)
	}

	return &Writer{cfg: cfg}, nil
}

// OpenReader opens the blob with the given hash and verifies its content against it.
func (s *Storage) OpenReader(cfg engine.TailsConfig, hash string) (engine.TailsReader, error) {
	if hash == "" || strings.ContainsAny(hash, `/\`) {
		return nil, fmt.Errorf("invalid tails hash '%s'", hash)
	}

	path := filepath.Join(cfg.BaseDir, hash)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read tails file: %w", err)
	}

	if Hash(data) != hash {
		return nil, fmt.Errorf("open tails '%s': %w", hash, ErrHashMismatch)
	}

	return &Reader{
		data:     bytes.NewReader(data),
		hash:     hash,
		location: Location(cfg, hash),
	}, nil
}

// Writer writes exactly one tails blob.
type Writer struct {
	cfg     engine.TailsConfig
	mu      sync.Mutex
	closed  bool
	written bool
}

// Write stores data under its hash. Storing content that already exists is a no-op.
func (w *Writer) Write(ctx context.Context, data []byte) (string, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return "", "", ErrWriterClosed
	}

	if w.written {
		return "", "", ErrAlreadyWritten
	}

	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	hash := Hash(data)
	target := filepath.Join(w.cfg.BaseDir, hash)

	if _, err := os.Stat(target); err == nil {
		logger.Debugf("tails file %s already present", hash)

		w.written = true

		return Location(w.cfg, hash), hash, nil
	}

	tmp := filepath.Join(w.cfg.BaseDir, uuid.New().String()+".tmp")

	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return "", "", fmt.Errorf("write tails file: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck

		return "", "", fmt.Errorf("store tails file: %w", err)
	}

	w.written = true

	logger.Debugf("stored tails file %s (%d bytes)", hash, len(data))

	return Location(w.cfg, hash), hash, nil
}

// Close releases the writer. Closing twice is allowed.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true

	return nil
}

// Reader gives random access to a verified tails blob.
type Reader struct {
	data     *bytes.Reader
	hash     string
	location string
}

// ReadAt implements io.ReaderAt.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	return r.data.ReadAt(p, off)
}

// Hash returns the tails hash.
func (r *Reader) Hash() string {
	return r.hash
}

// Location returns the tails location.
func (r *Reader) Location() string {
	return r.location
}

// Size returns the tails size in bytes.
func (r *Reader) Size() int64 {
	return r.data.Size()
}

// Close releases the reader.
func (r *Reader) Close() error {
	return nil
}

var (
	_ engine.BlobStorage = (*Storage)(nil)
	_ engine.TailsWriter = (*Writer)(nil)
	_ engine.TailsReader = (*Reader)(nil)
)
