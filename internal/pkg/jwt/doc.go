// Package jwt issues and verifies the HS512 tokens that carry a holder's
// identity between requests.
//
// Two kinds of token exist and they are never interchangeable: access tokens
// authenticate API calls, and challenge tokens carry a holder id from the first
// sign-in round to the second-factor round. Each Symmetric instance is bound to
// one audience, so a challenge token fails verification as an access token and
// the other way round.
package jwt
