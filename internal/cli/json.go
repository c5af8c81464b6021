package cli

import (
	"encoding/json"
	"io"
)

// writeJSON encodes a command's JSON payload with the same two-space
// indentation every palimpsest command emits.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
