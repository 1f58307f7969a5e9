// Package middleware provides the HTTP middleware chain for the
// authorization service.
//
// The chain runs in a fixed order:
//
//	RequestID -> Recovery -> RateLimit -> Authenticate -> Guard(action) -> handler
//
// Authenticate resolves the caller's credential to an identity and stores
// it in the request context. Guard evaluates the caller's access to the
// project named in the route and maps denials to HTTP statuses:
//
//	401  credential could not be resolved
//	403  access denied
//	404  project missing or inactive
//	500  internal fault during the check
//
// Every failure path denies. A handler behind Guard can assume the caller
// holds the required access.
package middleware
