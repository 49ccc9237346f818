// Package keel holds module-level metadata.
package keel

// Version is the current Keel release version.
const Version = "0.3.0"
