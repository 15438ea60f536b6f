package db

const holderColumns = `id, email, full_name, password_hash, status, email_verified,
	two_factor_enabled, two_factor_secret, two_factor_backup_codes, created_at, updated_at`

const queryGetHolderByEmail = `SELECT ` + holderColumns + `
FROM identity_holders
WHERE email = $1`

const queryGetHolderByID = `SELECT ` + holderColumns + `
FROM identity_holders
WHERE id = $1`

const queryCreateHolder = `INSERT INTO identity_holders (
	id, email, full_name, password_hash, status,
	verification_token, verification_token_expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

const queryUpdateVerificationToken = `UPDATE identity_holders
SET verification_token = $2,
	verification_token_expires_at = $3,
	updated_at = NOW()
WHERE id = $1`

const queryConsumeVerificationToken = `UPDATE identity_holders
SET email_verified = TRUE,
	verification_token = NULL,
	verification_token_expires_at = NULL,
	updated_at = NOW()
WHERE verification_token = $1
	AND verification_token_expires_at > $2
RETURNING id`

const queryLockTwoFactor = `SELECT two_factor_enabled, two_factor_secret, two_factor_backup_codes
FROM identity_holders
WHERE id = $1
FOR UPDATE`

const queryUpdateTwoFactor = `UPDATE identity_holders
SET two_factor_enabled = $2,
	two_factor_secret = $3,
	two_factor_backup_codes = $4,
	updated_at = NOW()
WHERE id = $1`
