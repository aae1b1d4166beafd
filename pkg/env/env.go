// Package env reads single environment variables for the few settings
// needed before the envconfig-backed config is loaded, such as the logger
// format picked at process start.
package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
