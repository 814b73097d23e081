package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// writeJSON prints v for --json. HTML escaping is off so diff markup and
// Japanese text stay readable.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeBody pretty-prints a generated body.
func writeBody(out io.Writer, body json.RawMessage) error {
	var buf bytes.Buffer
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return fmt.Errorf("format body: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
