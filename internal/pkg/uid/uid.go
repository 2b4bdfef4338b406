// Package uid generates identifiers: snowflake integers for primary keys and
// UUID strings for tokens, lock leases and correlation ids.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
