// Package client is the BlockKeeper gRPC client used by blockctl.
//
// GRPCClient owns the connection, injects the identity token into the
// authorization metadata through a unary interceptor and maps gRPC statuses
// back to sentinel errors that callers match with errors.Is:
// common.ErrUserExists, common.ErrorUnauthorized, ErrLoginFailed,
// ErrUnavailable and friends.
package client
