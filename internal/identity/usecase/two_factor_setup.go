package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/qrcode"
)

type TwoFactorSetupInput struct {
	HolderID int64 `validate:"required,gt=0"`
}

type TwoFactorSetupOutput struct {
	Secret          string
	ProvisioningURI string
	QRCodeImage     string
	BackupCodes     []string
}

func (s *Usecase) TwoFactorSetup(ctx context.Context, in TwoFactorSetupInput) (*TwoFactorSetupOutput, error) {
	ctx, span := s.startSpan(ctx, "TwoFactorSetup")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	holder, err := s.getAuthenticatedHolder(ctx, in.HolderID)
	if err != nil {
		return nil, err
	}

	if holder.TwoFactor.State() == entity.TwoFactorStateEnabled {
		slog.WarnContext(ctx, "two-factor setup requested while enabled", "holder_id", holder.ID)
		return nil, ErrTwoFactorAlreadyEnabled
	}

	secret, uri, err := s.totp.Generate(holder.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "holder_id", holder.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	img, err := qrcode.GenerateBase64Image(uri, s.cfg.GetInt("mfa.qr_size"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to render provisioning qr code", "holder_id", holder.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	codes, err := s.mfaRecoveryCode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate backup codes", "holder_id", holder.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TwoFactorSetupOutput{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCodeImage:     img,
		BackupCodes:     codes,
	}, nil
}

// getAuthenticatedHolder loads the holder behind a verified session. A missing
// or gated holder means the session no longer maps to a usable account.
func (s *Usecase) getAuthenticatedHolder(ctx context.Context, holderID int64) (*entity.Holder, error) {
	holder, err := s.repoDB.GetHolderByID(ctx, holderID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "authenticated holder not found", "holder_id", holderID)
		return nil, ErrAuthenticationRequired
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get holder by id", "holder_id", holderID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.ensureHolderActive(ctx, holder) {
		return nil, ErrAccountNotAllowed
	}

	return holder, nil
}
