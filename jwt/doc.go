// Package jwt issues and validates the signed session tokens minted at
// login. Tokens are HMAC-SHA256 signed with a process-static symmetric
// secret and carry {sub: email, id: account id, role, exp}. Validity is
// stateless: signature plus embedded expiry, nothing server-side.
package jwt
