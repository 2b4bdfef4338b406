// Package jwt verifies the HS512 bearer tokens issued by the portal's identity
// service and carries the resulting claims through request contexts.
package jwt
