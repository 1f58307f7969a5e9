// Package authn resolves inbound credentials to a canonical user identity.
//
// Two credential shapes are supported, discriminated by prefix:
//
//   - API keys carry the "wdn_" prefix. Resolution scans the stored
//     credential hashes and runs a bcrypt comparison against each candidate.
//     This is O(n) in the number of issued keys; acceptable at current
//     tenant counts but a known scaling limit.
//   - Anything else is treated as a bearer token and verified against the
//     configured OpenID Connect provider; the subject claim becomes the
//     user id.
//
// Both paths produce the same Identity shape, so nothing downstream ever
// branches on the authentication method.
package authn
