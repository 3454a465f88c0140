package util

import (
	"encoding/json"
	"os"
)

// PrintJSON writes v to stdout as indented JSON, for --output json modes.
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
