// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding and request parsing.
//
// Error responses carry a human-readable message and, for authentication
// and authorization failures, a stable machine-readable reason code:
//
//	{"error": "access denied", "reason": "insufficient_role"}
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, data)
//	httputil.WriteForbidden(w, "access denied", reason)
//	httputil.WriteNotFound(w, "project not found")
//
// # Request Parsing
//
//	var req BatchCheckRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//	projectID, ok := httputil.ParsePathStringOrError(w, r, "project_id")
//
// # Related Packages
//
//   - pkg/middleware: Authentication and authorization middleware
package httputil
