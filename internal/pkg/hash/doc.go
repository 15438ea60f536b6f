// Package hash provides helpers for hashing and verifying secrets.
//
// Passwords are hashed with bcrypt, backup codes with argon2id (salted, one digest
// per code) and lookup tokens with a keyed HMAC-SHA256 so they can be matched in a
// WHERE clause. All implementations live behind the small Hash interface.
package hash
