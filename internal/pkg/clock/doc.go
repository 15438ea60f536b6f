// Package clock lets token expiry, TOTP windows and JWT lifetimes be tested
// against a fixed instant. Code takes a Clocker; tests pass a Manual.
package clock
