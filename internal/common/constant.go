// Package common contains constants shared by the transport, the credential
// stores and the CLI.
package common

const (
	// AuthorizationHeader carries "Bearer <access>" on outbound calls.
	AuthorizationHeader = "Authorization"
	// BearerPrefix precedes the access token in AuthorizationHeader.
	BearerPrefix = "Bearer "
	// RequestIDHeader correlates a logical call (and its one retry) in logs.
	RequestIDHeader = "X-Request-ID"
)

// Durable slot names for the credential pair.
const (
	AccessTokenSlot  = "access_token"
	RefreshTokenSlot = "refresh_token"
	// SealSaltSlot holds the argon2 salt when slots are sealed.
	SealSaltSlot = "seal_salt"
)
