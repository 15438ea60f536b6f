// Package otp generates and validates time-based one-time passwords (TOTP,
// RFC 6238) for second-factor enrollment and sign-in.
//
// Generate produces a fresh secret and the otpauth:// provisioning URI that an
// authenticator app scans. Validate checks a submitted code against the current
// time step and a configurable number of neighbouring steps.
package otp
