// Package password implements the PasswordHasher capability with Argon2id
// and PHC-formatted hashes ($argon2id$v=19$m=...,t=...,p=...$salt$hash).
//
// Verification recomputes the hash with the parameters embedded in the
// stored string and compares with crypto/subtle, so it stays constant-time
// and keeps working across parameter upgrades. NeedsRehash lets callers
// migrate hashes opportunistically after a successful verification.
package password
