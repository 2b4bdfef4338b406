// Package validator validates request structs and configuration values.
//
// Callers depend on the Validator interface; V10 is the go-playground/validator
// implementation with English messages and a few domain rules (timeofday,
// timezone) registered on top of the built-in tags.
package validator
