// Package suggest provides the version information for suggest-go.
package suggest

// Version is the current version of suggest-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
