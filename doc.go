// Package mentorauth provides the authentication and credential-verification
// core for a mentorship platform: argon2id password hashing, HS256 session
// tokens, and an email OTP challenge flow with expiry.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// mentorauth is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([AccountProvider], [Mailer], [ChallengeStore],
// [AuditSink]), and value types. The token manager and hasher live in the jwt
// and password sub-packages; the PostgreSQL account provider lives in store.
//
// # What this package must NOT do
//
//   - Persist or log plaintext passwords or OTP codes (challenge stores hold
//     only SHA-256 digests of codes).
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Deliver email itself: delivery is delegated to the [Mailer]
//     collaborator and treated as fire-and-forget with a boolean-style result.
//
// # State model
//
// Session tokens are stateless: validity is determined purely by signature
// and embedded expiry, and nothing is persisted server-side. OTP challenges
// are the one piece of shared mutable state; the default in-memory
// [ChallengeStore] is process-local and volatile, so challenges are lost on
// restart and do not scale across server instances. Wire the Redis store for
// multi-instance deployments.
package mentorauth
