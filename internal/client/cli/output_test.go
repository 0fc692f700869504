package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/client/services"
)

func TestParseRecord(t *testing.T) {
	rec, err := parseRecord(`{"title":"x","n":12345678901234567890}`)
	require.NoError(t, err)
	assert.Equal(t, "x", rec["title"])
	assert.Equal(t, json.Number("12345678901234567890"), rec["n"])

	for _, bad := range []string{"", "null", "[]", `"s"`, `{"a":1} {"b":2}`, "{", `{"a":1}]`, `{"a":1}}`} {
		_, err := parseRecord(bad)
		assert.ErrorIs(t, err, errUsage, bad)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, client.Record{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)
	p.update(0.1)
	p.update(0.101)
	p.update(0.5)
	p.update(1)

	assert.Equal(t, "\ruploading  10%\ruploading  50%\ruploading 100%\n", buf.String())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{fmt.Errorf("x: %w", errUsage), ExitUser},
		{fmt.Errorf("x: %w", services.ErrInvalidInput), ExitUser},
		{&client.StatusError{Code: 404}, ExitUser},
		{fmt.Errorf("get: %w", &client.StatusError{Code: 401}), ExitUser},
		{&client.StatusError{Code: 503}, ExitSystem},
		{&client.MalformedResponseError{Err: errors.New("x")}, ExitUser},
		{client.ErrEmptyUpload, ExitUser},
		{&client.TransportError{Err: errors.New("refused")}, ExitSystem},
		{errors.New("state db broken"), ExitSystem},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
