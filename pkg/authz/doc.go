// Package authz implements the multi-tenant authorization core for Warden.
//
// # Overview
//
// Access to a project is decided from a three-level role hierarchy:
// organization role, team role, and the project's owning team. The same
// ordered role set (viewer < member < admin < owner) is used independently
// at organization and team scope. Actions are ordered by required
// privilege: read < write < manage.
//
// # Components
//
//   - PolicyStore: read-only data access interface. Implementations hold no
//     policy logic; every rule lives in this package.
//   - ContextLoader: builds an immutable AuthContext (org role plus all team
//     memberships) for a user, with an optional TTL cache.
//   - Evaluator: applies the policy table to a context, project and action,
//     producing a Decision.
//   - BatchChecker: answers read access for many projects with one context
//     load and one bulk project fetch.
//
// # Decision rules
//
// Preconditions run before any role comparison, in order: missing context,
// missing project, inactive project, organization mismatch. The
// organization-isolation check is unconditional; an organization owner in
// one tenant is never granted anything in another.
//
// The policy table then grants per action:
//
//	read:   org admin/owner, or any team membership
//	write:  org admin/owner, or team admin/owner
//	manage: org owner only,  or team owner only
//
// Note the manage asymmetry: an organization admin can write to a project
// but cannot manage it. That keeps destructive operations (delete,
// transfer) with owners.
//
// # Failure semantics
//
// Every path fails closed. Store errors surface as denials with reason
// "internal_error", never as a panic or an implicit allow.
package authz
