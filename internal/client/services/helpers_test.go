package services

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/client/state"
	"github.com/dmitrijs2005/gostrapi/internal/fakestrapi"
)

type env struct {
	srv    *fakestrapi.Server
	ts     *httptest.Server
	client *client.HTTPClient
	db     *sql.DB
}

func newEnv(t *testing.T, opts fakestrapi.Options) *env {
	t.Helper()
	srv := fakestrapi.New(opts)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	c, err := client.NewHTTPClient(ts.URL)
	require.NoError(t, err)

	db, err := state.InitDatabase(context.Background(), state.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &env{srv: srv, ts: ts, client: c, db: db}
}
