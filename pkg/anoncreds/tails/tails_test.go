/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package tails

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-anoncreds-go/pkg/anoncreds/engine"
)

func TestWriterAndReader(t *testing.T) {
	storage := NewStorage()
	cfg := engine.TailsConfig{BaseDir: filepath.Join(t.TempDir(), "tails")}
	data := []byte("witness data")

	w, err := storage.OpenWriter(cfg)
	require.NoError(t, err)

	location, hash, err := w.Write(context.Background(), data)
	require.NoError(t, err)
	require.Equal(t, Hash(data), hash)
	require.Equal(t, filepath.Join(cfg.BaseDir, hash), location)
	require.NoError(t, w.Close())

	stored, err := os.ReadFile(location)
	require.NoError(t, err)
	require.Equal(t, data, stored)

	r, err := storage.OpenReader(cfg, hash)
	require.NoError(t, err)

	defer func() { require.NoError(t, r.Close()) }()

	require.Equal(t, hash, r.Hash())
	require.Equal(t, location, r.Location())
	require.EqualValues(t, len(data), r.Size())

	buf := make([]byte, 4)
	n, err := r.ReadAt(buf, 8)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "data", string(buf))
}

func TestWriter_WriteOnce(t *testing.T) {
	storage := NewStorage()
	cfg := engine.TailsConfig{BaseDir: t.TempDir()}

	w, err := storage.OpenWriter(cfg)
	require.NoError(t, err)

	_, _, err = w.Write(context.Background(), []byte("a"))
	require.NoError(t, err)

	_, _, err = w.Write(context.Background(), []byte("b"))
	require.True(t, errors.Is(err, ErrAlreadyWritten))

	t.Run("closed writer", func(t *testing.T) {
		w, err := storage.OpenWriter(cfg)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())

		_, _, err = w.Write(context.Background(), []byte("a"))
		require.True(t, errors.Is(err, ErrWriterClosed))
	})

	t.Run("same content twice", func(t *testing.T) {
		w, err := storage.OpenWriter(cfg)
		require.NoError(t, err)

		_, hash, err := w.Write(context.Background(), []byte("a"))
		require.NoError(t, err)
		require.Equal(t, Hash([]byte("a")), hash)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w, err := storage.OpenWriter(cfg)
		require.NoError(t, err)

		_, _, err = w.Write(ctx, []byte("c"))
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestOpenWriter_Errors(t *testing.T) {
	_, err := NewStorage().OpenWriter(engine.TailsConfig{})
	require.EqualError(t, err, "tails base dir is required")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err = NewStorage().OpenWriter(engine.TailsConfig{BaseDir: filepath.Join(file, "sub")})
	require.Error(t, err)
}

func TestOpenReader_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := engine.TailsConfig{BaseDir: dir}

	_, err := NewStorage().OpenReader(cfg, "")
	require.Error(t, err)

	_, err = NewStorage().OpenReader(cfg, "../etc")
	require.Error(t, err)

	_, err = NewStorage().OpenReader(cfg, "missing")
	require.Error(t, err)

	hash := Hash([]byte("original"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, hash), []byte("tampered"), 0o600))

	_, err = NewStorage().OpenReader(cfg, hash)
	require.True(t, errors.Is(err, ErrHashMismatch))
}

func TestLocation(t *testing.T) {
	require.Equal(t, filepath.Join("/tails", "abc"), Location(engine.TailsConfig{BaseDir: "/tails"}, "abc"))
	require.Equal(t, "https://tails.example.com/abc",
		Location(engine.TailsConfig{URIPattern: "https://tails.example.com/"}, "abc"))
	require.Equal(t, "https://tails.example.com/abc/file",
		Location(engine.TailsConfig{URIPattern: "https://tails.example.com/{hash}/file"}, "abc"))
}
