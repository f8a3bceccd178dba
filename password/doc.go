// Package password hashes and verifies credentials with argon2id. Digests
// use the PHC string format, embedding algorithm id, version, cost
// parameters, and salt, so verification is self-describing. Length policy
// for plaintext passwords is enforced by the Engine, not here; this package
// only enforces minimum work factors.
package password
