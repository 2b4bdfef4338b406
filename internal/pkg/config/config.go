package config

import (
	"io"
	"time"
)

// Config is the read side of the service configuration.
//
// Missing keys resolve to the zero value of the requested type unless a
// default was registered when the implementation was built.
type Config interface {
	io.Closer

	// GetBool returns the value for key as a bool.
	GetBool(key string) bool
	// GetString returns the value for key as a string.
	GetString(key string) string
	// GetInt returns the value for key as an int.
	GetInt(key string) int
	// GetInt32 returns the value for key as an int32.
	GetInt32(key string) int32
	// GetInt64 returns the value for key as an int64.
	GetInt64(key string) int64
	// GetUint16 returns the value for key as a uint16.
	GetUint16(key string) uint16
	// GetFloat64 returns the value for key as a float64.
	GetFloat64(key string) float64

	// GetSecond interprets the value for key as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute interprets the value for key as a number of minutes.
	GetMinute(key string) time.Duration

	// GetArray returns the value for key as a list.
	// Both YAML sequences and comma separated strings are accepted; blank
	// elements are dropped.
	GetArray(key string) []string
}
