// Package store implements the read-only policy store on PostgreSQL.
//
// The Store satisfies authz.PolicyStore and authn.CredentialSource with
// pure data queries; no access rule lives at this layer. A project's
// organization is derived by joining its owning team, so tenant ownership
// has a single source of truth.
//
// Every query runs under a per-query timeout. A timeout is reported like
// any other query failure and the caller denies access.
package store
