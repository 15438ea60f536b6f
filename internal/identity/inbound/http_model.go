package inbound

import (
	"net/http"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type RegisterResponse struct {
	HolderID int64 `json:"holder_id,string"`
}

func (RegisterResponse) Message() string {
	return "Registration successful. Please check your email to verify your account."
}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

type RegisterResendRequest struct {
	Email string `json:"email"`
}

type RegisterResendResponse struct{}

func (RegisterResendResponse) Message() string {
	return "If an unverified account with that email exists, we have sent a verification link."
}

type RegisterVerifyRequest struct {
	Token string `json:"token"`
}

type RegisterVerifyResponse struct{}

func (RegisterVerifyResponse) Message() string {
	return "Email verified. You can now sign in."
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	TwoFactorRequired bool             `json:"two_factor_required"`
	ChallengeToken    string           `json:"challenge_token,omitempty"`
	AccessToken       string           `json:"access_token,omitempty"`
	TokenType         string           `json:"token_type,omitempty"`
	Profile           *ProfileResponse `json:"profile,omitempty"`
}

type SignInTwoFactorRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

type SignInTwoFactorResponse struct {
	AccessToken          string          `json:"access_token"`
	TokenType            string          `json:"token_type"`
	BackupCodeUsed       bool            `json:"backup_code_used"`
	RemainingBackupCodes int             `json:"remaining_backup_codes"`
	Profile              ProfileResponse `json:"profile"`
}

type TwoFactorSetupResponse struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	QRCodeImage     string   `json:"qr_code_image"`
	BackupCodes     []string `json:"backup_codes"`
}

func (TwoFactorSetupResponse) Message() string {
	return "Scan the QR code and store the backup codes, then confirm with a code from your authenticator."
}

type TwoFactorEnableRequest struct {
	Secret      string   `json:"secret"`
	Code        string   `json:"code"`
	BackupCodes []string `json:"backup_codes"`
}

type TwoFactorEnableResponse struct{}

func (TwoFactorEnableResponse) Message() string {
	return "Two-factor authentication enabled."
}

type TwoFactorDisableRequest struct {
	Code string `json:"code"`
}

type TwoFactorDisableResponse struct{}

func (TwoFactorDisableResponse) Message() string {
	return "Two-factor authentication disabled."
}

type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

type TwoFactorVerifyResponse struct {
	BackupCodeUsed       bool `json:"backup_code_used"`
	RemainingBackupCodes int  `json:"remaining_backup_codes"`
}

type ProfileResponse struct {
	ID                   int64  `json:"id,string"`
	Email                string `json:"email"`
	FullName             string `json:"full_name"`
	EmailVerified        bool   `json:"email_verified"`
	TwoFactorEnabled     bool   `json:"two_factor_enabled"`
	RemainingBackupCodes int    `json:"remaining_backup_codes"`
}

func newProfileResponse(p entity.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                   p.ID,
		Email:                p.Email,
		FullName:             p.FullName,
		EmailVerified:        p.EmailVerified,
		TwoFactorEnabled:     p.TwoFactorEnabled,
		RemainingBackupCodes: p.RemainingBackupCodes,
	}
}
