// Package common contains shared constants and sentinel errors used across
// azura components.
package common

// AccessTokenHeaderName is the HTTP header that may carry the access token
// when the Authorization bearer form is not used.
const AccessTokenHeaderName = "access_token"

// BearerPrefix is the scheme prefix of the Authorization header.
const BearerPrefix = "Bearer "
