// Package mail sends transactional email. Callers depend on the Mail interface;
// SMTP delivery is implemented with github.com/wneessen/go-mail.
package mail
