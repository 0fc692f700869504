package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/fakestrapi"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func TestFileService_UploadAndList(t *testing.T) {
	e := newEnv(t, fakestrapi.Options{})
	svc := NewFileService(e.client)
	ctx := context.Background()

	var mu sync.Mutex
	var last float64
	uploaded, err := svc.Upload(ctx, [][]byte{pngData, []byte("hello")}, func(f float64) {
		mu.Lock()
		last = f
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, uploaded, 2)
	assert.Equal(t, ".png", uploaded[0]["ext"])
	assert.Equal(t, ".txt", uploaded[1]["ext"])
	mu.Lock()
	assert.Equal(t, 1.0, last)
	mu.Unlock()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	one, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, uploaded[0]["hash"], one["hash"])

	_, err = svc.Get(ctx, "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFileService_UploadPaths(t *testing.T) {
	e := newEnv(t, fakestrapi.Options{})
	svc := NewFileService(e.client)
	dir := t.TempDir()

	img := filepath.Join(dir, "photo.bin")
	blob := filepath.Join(dir, "archive.dat")
	require.NoError(t, os.WriteFile(img, pngData, 0o600))
	require.NoError(t, os.WriteFile(blob, []byte{0x00, 0x01, 0xfe, 0xff, 0x00, 0x13}, 0o600))

	uploaded, err := svc.UploadPaths(context.Background(), []string{img, blob}, nil)
	require.NoError(t, err)
	require.Len(t, uploaded, 2)

	// sniffed type wins over the file's own extension
	assert.Equal(t, ".png", uploaded[0]["ext"])
	// unknown content keeps the original extension
	assert.Equal(t, ".dat", uploaded[1]["ext"])
	assert.True(t, strings.HasSuffix(uploaded[1]["name"].(string), ".dat"))
}

func TestFileService_UploadPathsErrors(t *testing.T) {
	e := newEnv(t, fakestrapi.Options{})
	svc := NewFileService(e.client)
	ctx := context.Background()

	_, err := svc.UploadPaths(ctx, nil, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UploadPaths(ctx, []string{filepath.Join(t.TempDir(), "missing.png")}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = svc.Upload(ctx, nil, nil)
	require.ErrorIs(t, err, client.ErrEmptyUpload)

	assert.Empty(t, e.srv.Requests())
}
