// Package config reads typed runtime settings by dotted key.
package config

import (
	"io"
	"time"
)

// Config retrieves configuration values by dotted key. Missing or malformed
// values return the zero value of the requested type.
type Config interface {
	io.Closer

	// Has reports whether key is set, even to a zero value.
	Has(key string) bool

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetUint(key string) uint
	GetFloat64(key string) float64

	// GetSecond, GetMinute and GetHour read an integer and scale it.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray accepts either a YAML list or a comma separated string.
	// Blank elements are dropped.
	GetArray(key string) []string
}
