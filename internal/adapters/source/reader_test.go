package source_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/weaver/internal/adapters/source"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.txt")
	require.NoError(t, os.WriteFile(path, []byte("short lines\n"), 0644))

	text, err := source.NewReader().Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "short lines\n", text)
}

func TestReader_Unavailable(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0x00}, 0644))
	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte("0123456789"), 0644))

	reader := source.NewReader(source.WithMaxBytes(4))
	for _, loc := range []string{filepath.Join(dir, "missing.txt"), binary, big} {
		_, err := reader.Read(context.Background(), loc)
		var unavailable *domain.SourceUnavailableError
		require.ErrorAs(t, err, &unavailable, loc)
		assert.Equal(t, loc, unavailable.Locator)
	}
}

func TestReader_URLCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "remote notes")
	}))
	defer server.Close()

	reader := source.NewReader(source.WithCache(16, time.Minute))
	defer reader.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		text, err := reader.Read(ctx, server.URL+"/notes")
		require.NoError(t, err)
		assert.Equal(t, "remote notes", text)
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err := reader.Read(ctx, server.URL+"/missing")
	var unavailable *domain.SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}
