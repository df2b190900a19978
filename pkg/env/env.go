package env

import (
	"os"
	"strings"
)

// Get reads a variable outside the envconfig struct, e.g. before config has
// loaded. Blank values count as unset.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
