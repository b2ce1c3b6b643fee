package main

import (
	"encoding/json"
	"io"
)

// writeJSON prints v indented. Drive and S3 links carry query strings, so
// HTML escaping stays off to keep them copyable.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
