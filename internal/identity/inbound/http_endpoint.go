package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/pawhaven/internal/identity/usecase"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/jwt"
	"github.com/shandysiswandi/pawhaven/internal/pkg/router"
)

const tokenTypeBearer = "Bearer"

var errInvalidChallenge = goerror.NewBusiness("Invalid or expired challenge", goerror.CodeUnauthorized)

// HTTPEndpoint exposes HTTP handlers for registration, sign-in and two-factor
// workflows.
type HTTPEndpoint struct {
	uc        uc
	access    jwt.JWT
	challenge jwt.JWT
}

// Register creates an unverified account and sends the verification email.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{HolderID: resp.HolderID}, nil
}

// RegisterResend re-sends the verification email. The response never reveals
// whether the email is registered.
func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	var req RegisterResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return RegisterResendResponse{}, nil
}

// RegisterVerify consumes an email verification token.
func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req RegisterVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.ConsumeVerificationToken(r.Context(), usecase.ConsumeVerificationTokenInput{
		Token: req.Token,
	}); err != nil {
		return nil, err
	}

	return RegisterVerifyResponse{}, nil
}

// SignIn checks credentials. It returns an access token, or a challenge token
// when the account requires a second factor.
func (h *HTTPEndpoint) SignIn(r *router.Request) (any, error) {
	var req SignInRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SignIn(r.Context(), usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	if resp.TwoFactorRequired {
		token, err := h.challenge.Generate(resp.HolderID, req.Email)
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to generate challenge token", "holder_id", resp.HolderID, "error", err)
			return nil, goerror.NewServer(err)
		}

		return SignInResponse{TwoFactorRequired: true, ChallengeToken: token}, nil
	}

	token, err := h.access.Generate(resp.Profile.ID, resp.Profile.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to generate access token", "holder_id", resp.Profile.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	profile := newProfileResponse(*resp.Profile)
	return SignInResponse{AccessToken: token, TokenType: tokenTypeBearer, Profile: &profile}, nil
}

// SignInTwoFactor completes a challenged sign-in with a TOTP or backup code.
func (h *HTTPEndpoint) SignInTwoFactor(r *router.Request) (any, error) {
	var req SignInTwoFactorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if req.ChallengeToken == "" {
		return nil, goerror.NewInvalidInput(nil, "challenge_token", "challenge_token is a required field")
	}

	clm, err := h.challenge.Verify(req.ChallengeToken)
	if err != nil {
		slog.WarnContext(r.Context(), "invalid challenge token", "error", err)
		return nil, errInvalidChallenge
	}

	resp, err := h.uc.SignInTwoFactor(r.Context(), usecase.SignInTwoFactorInput{
		HolderID: clm.HolderID,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	token, err := h.access.Generate(resp.Profile.ID, resp.Profile.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to generate access token", "holder_id", resp.Profile.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return SignInTwoFactorResponse{
		AccessToken:          token,
		TokenType:            tokenTypeBearer,
		BackupCodeUsed:       resp.BackupCodeUsed,
		RemainingBackupCodes: resp.RemainingBackupCodes,
		Profile:              newProfileResponse(resp.Profile),
	}, nil
}

// TwoFactorSetup generates a secret and backup codes. Nothing is stored yet.
func (h *HTTPEndpoint) TwoFactorSetup(r *router.Request) (any, error) {
	holderID, err := authenticatedHolder(r.Context())
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.TwoFactorSetup(r.Context(), usecase.TwoFactorSetupInput{HolderID: holderID})
	if err != nil {
		return nil, err
	}

	return TwoFactorSetupResponse{
		Secret:          resp.Secret,
		ProvisioningURI: resp.ProvisioningURI,
		QRCodeImage:     resp.QRCodeImage,
		BackupCodes:     resp.BackupCodes,
	}, nil
}

// TwoFactorEnable confirms a setup with a code from the authenticator.
func (h *HTTPEndpoint) TwoFactorEnable(r *router.Request) (any, error) {
	holderID, err := authenticatedHolder(r.Context())
	if err != nil {
		return nil, err
	}

	var req TwoFactorEnableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.TwoFactorEnable(r.Context(), usecase.TwoFactorEnableInput{
		HolderID:    holderID,
		Secret:      req.Secret,
		Code:        req.Code,
		BackupCodes: req.BackupCodes,
	}); err != nil {
		return nil, err
	}

	return TwoFactorEnableResponse{}, nil
}

// TwoFactorDisable turns the second factor off after re-verification.
func (h *HTTPEndpoint) TwoFactorDisable(r *router.Request) (any, error) {
	holderID, err := authenticatedHolder(r.Context())
	if err != nil {
		return nil, err
	}

	var req TwoFactorDisableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.TwoFactorDisable(r.Context(), usecase.TwoFactorDisableInput{
		HolderID: holderID,
		Code:     req.Code,
	}); err != nil {
		return nil, err
	}

	return TwoFactorDisableResponse{}, nil
}

// TwoFactorVerify checks a second factor for an already signed-in holder.
func (h *HTTPEndpoint) TwoFactorVerify(r *router.Request) (any, error) {
	holderID, err := authenticatedHolder(r.Context())
	if err != nil {
		return nil, err
	}

	var req TwoFactorVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TwoFactorVerify(r.Context(), usecase.TwoFactorVerifyInput{
		HolderID: holderID,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return TwoFactorVerifyResponse{
		BackupCodeUsed:       resp.BackupCodeUsed,
		RemainingBackupCodes: resp.RemainingBackupCodes,
	}, nil
}

// Profile returns the public profile of the signed-in holder.
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	holderID, err := authenticatedHolder(r.Context())
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Profile(r.Context(), usecase.ProfileInput{HolderID: holderID})
	if err != nil {
		return nil, err
	}

	return newProfileResponse(*resp), nil
}

func authenticatedHolder(ctx context.Context) (int64, error) {
	clm, ok := jwt.FromContext(ctx)
	if !ok || clm.HolderID == 0 {
		return 0, usecase.ErrAuthenticationRequired
	}
	return clm.HolderID, nil
}
