// Package common contains constants and small helpers shared by the NeuroFit
// client, the sandbox API and the CLI.
package common

// Outbound request headers.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
)

// Keys of the persisted session layout. Values are stored as plain strings.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserIDKey       = "userId"
)
