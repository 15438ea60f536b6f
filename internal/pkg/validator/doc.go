// Package validator checks request structs with go-playground/validator and
// reports failures as a snake_case field map. It adds the password, totpsecret
// and backupcode tags used by the identity module.
package validator
