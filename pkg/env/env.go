package env

import "os"

// Get reads an environment variable, falling back when unset or empty.
// Used for the few knobs read before config parsing, like the log format.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
