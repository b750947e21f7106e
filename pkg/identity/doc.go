// Package identity provides the authenticated caller for tictoc requests.
//
// An Identity combines the claims of a verified login token with
// request-specific context such as the client address.
//
// # Basic Usage
//
//	id := identity.FromClaims(claims).WithRemoteIP(clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//
// # Identity vs Token
//
// The token package verifies the raw bearer token. The identity package
// carries the result through the request so handlers never re-parse it.
package identity
