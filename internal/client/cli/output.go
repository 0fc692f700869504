package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseRecord decodes a JSON object given on the command line.
func parseRecord(arg string) (client.Record, error) {
	var rec client.Record
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: fields must be a JSON object: %w", errUsage, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: fields must be a JSON object, not null", errUsage)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", errUsage)
	}
	return rec, nil
}

// progressPrinter renders upload progress as a single rewritten line.
type progressPrinter struct {
	w    io.Writer
	last int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, last: -1}
}

func (p *progressPrinter) update(fraction float64) {
	pct := int(fraction * 100)
	if pct == p.last {
		return
	}
	p.last = pct
	fmt.Fprintf(p.w, "\ruploading %3d%%", pct)
	if pct >= 100 {
		fmt.Fprintln(p.w)
	}
}
