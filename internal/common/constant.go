package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "authorization"

// BearerPrefix precedes the token in the AccessTokenHeaderName value.
const BearerPrefix = "Bearer "
