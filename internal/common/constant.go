// Package common contains shared constants and sentinel errors used across
// shopkeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// outbound requests.
const AuthorizationHeaderName = "Authorization"

// Durable store keys. The cart and the session share one key-value store
// under disjoint keys.
const (
	// KeyCart holds the serialized cart snapshot: {"items": [...]}.
	KeyCart = "cart"
	// KeyAuthToken holds the raw bearer token string.
	KeyAuthToken = "authToken"
	// KeyUserData holds the cached user as a JSON object.
	KeyUserData = "userData"
)
