package usecase

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

func TestTwoFactorSetup(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		h := f.seedHolder(t, "tara@example.com")

		// Act
		out, err := f.uc.TwoFactorSetup(context.Background(), TwoFactorSetupInput{HolderID: h.ID})

		// Assert
		if err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if out.Secret == "" || !strings.HasPrefix(out.ProvisioningURI, "otpauth://totp/") {
			t.Fatalf("unexpected provisioning data %+v", out)
		}
		if !strings.HasPrefix(out.QRCodeImage, "data:image/png;base64,") {
			t.Fatal("expected a png data uri")
		}
		if len(out.BackupCodes) != 10 {
			t.Fatalf("expected 10 backup codes, got %d", len(out.BackupCodes))
		}
		if f.repo.holder(h.ID).TwoFactor.Enabled {
			t.Fatal("setup must not persist anything")
		}
	})

	t.Run("AlreadyEnabled", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "uma@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA")

		_, err := f.uc.TwoFactorSetup(context.Background(), TwoFactorSetupInput{HolderID: h.ID})

		assertErrorIs(t, err, ErrTwoFactorAlreadyEnabled)
	})

	t.Run("GatedOrMissingHolder", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "vic@example.com", withStatus(entity.HolderStatusInactive))

		_, gatedErr := f.uc.TwoFactorSetup(context.Background(), TwoFactorSetupInput{HolderID: h.ID})
		_, goneErr := f.uc.TwoFactorSetup(context.Background(), TwoFactorSetupInput{HolderID: 424242})

		assertErrorIs(t, gatedErr, ErrAccountNotAllowed)
		assertErrorIs(t, goneErr, ErrAuthenticationRequired)
	})
}

func TestTwoFactorEnable(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		h := f.seedHolder(t, "walt@example.com")

		// Act
		err := f.uc.TwoFactorEnable(context.Background(), TwoFactorEnableInput{
			HolderID:    h.ID,
			Secret:      strings.ToLower(testTOTPSecret),
			Code:        f.totpCode(t, 0),
			BackupCodes: []string{"aaaaaaaa", "BBBBBBBB"},
		})

		// Assert
		if err != nil {
			t.Fatalf("enable failed: %v", err)
		}

		tf := f.repo.holder(h.ID).TwoFactor
		if !tf.Enabled || len(tf.Secret) == 0 || bytes.Contains(tf.Secret, []byte(testTOTPSecret)) {
			t.Fatal("expected a sealed secret")
		}
		if len(tf.BackupCodes) != 2 || !f.argon2id.Verify(tf.BackupCodes[0], "AAAAAAAA") {
			t.Fatalf("expected hashed, uppercased backup codes, got %v", tf.BackupCodes)
		}
	})

	t.Run("WrongCode", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "xena@example.com")

		err := f.uc.TwoFactorEnable(context.Background(), TwoFactorEnableInput{
			HolderID:    h.ID,
			Secret:      testTOTPSecret,
			Code:        f.totpCode(t, 10*time.Minute),
			BackupCodes: []string{"AAAAAAAA"},
		})

		assertErrorIs(t, err, ErrInvalidCode)
		if tf := f.repo.holder(h.ID).TwoFactor; tf.Enabled || tf.Secret != nil || tf.BackupCodes != nil {
			t.Fatalf("expected nothing persisted, got %+v", tf)
		}
	})

	t.Run("InvalidBackupCodes", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "yara@example.com")

		for _, codes := range [][]string{nil, {"AAAAAAAA", "AAAAAAAA"}, {"XYZ"}} {
			err := f.uc.TwoFactorEnable(context.Background(), TwoFactorEnableInput{
				HolderID:    h.ID,
				Secret:      testTOTPSecret,
				Code:        f.totpCode(t, 0),
				BackupCodes: codes,
			})
			assertCode(t, err, goerror.CodeInvalidInput)
		}
	})

	t.Run("AlreadyEnabled", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "zed@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA")

		err := f.uc.TwoFactorEnable(context.Background(), TwoFactorEnableInput{
			HolderID:    h.ID,
			Secret:      testTOTPSecret,
			Code:        f.totpCode(t, 0),
			BackupCodes: []string{"BBBBBBBB"},
		})

		assertErrorIs(t, err, ErrTwoFactorAlreadyEnabled)
	})
}

func TestTwoFactorVerify(t *testing.T) {
	t.Run("TOTPWindow", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "amy@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA")

		for step := -2; step <= 2; step++ {
			out, err := f.uc.TwoFactorVerify(context.Background(), TwoFactorVerifyInput{
				HolderID: h.ID,
				Code:     f.totpCode(t, time.Duration(step)*30*time.Second),
			})
			if err != nil || out.BackupCodeUsed {
				t.Fatalf("step %d: expected totp to pass, got %+v, %v", step, out, err)
			}
		}

		for _, step := range []int{-3, 3} {
			_, err := f.uc.TwoFactorVerify(context.Background(), TwoFactorVerifyInput{
				HolderID: h.ID,
				Code:     f.totpCode(t, time.Duration(step)*30*time.Second),
			})
			assertErrorIs(t, err, ErrInvalidCode)
		}
	})

	t.Run("BackupCode", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "ben@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA", "BBBBBBBB")

		out, err := f.uc.TwoFactorVerify(context.Background(), TwoFactorVerifyInput{HolderID: h.ID, Code: "BBBBBBBB"})

		if err != nil || !out.BackupCodeUsed || out.RemainingBackupCodes != 1 {
			t.Fatalf("unexpected result %+v, %v", out, err)
		}
	})

	t.Run("DisabledAfterSnapshot", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		h := f.seedHolder(t, "bea@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA")
		snapshot := f.repo.holder(h.ID)
		if err := f.repo.MutateTwoFactor(context.Background(), h.ID, func(entity.TwoFactor) (entity.TwoFactor, error) {
			return entity.TwoFactor{}, nil
		}); err != nil {
			t.Fatalf("disable: %v", err)
		}

		// Act
		_, err := f.uc.verifySecondFactor(context.Background(), &snapshot, f.totpCode(t, 0))

		// Assert
		assertErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("DisabledTwoFactor", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "cal@example.com")

		_, err := f.uc.TwoFactorVerify(context.Background(), TwoFactorVerifyInput{HolderID: h.ID, Code: "AAAAAAAA"})

		assertErrorIs(t, err, ErrInvalidCode)
	})
}

func TestTwoFactorDisable(t *testing.T) {
	t.Run("WithTOTP", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		h := f.seedHolder(t, "dee@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA")

		// Act
		err := f.uc.TwoFactorDisable(context.Background(), TwoFactorDisableInput{HolderID: h.ID, Code: f.totpCode(t, 0)})

		// Assert
		if err != nil {
			t.Fatalf("disable failed: %v", err)
		}
		tf := f.repo.holder(h.ID).TwoFactor
		if tf.Enabled || tf.Secret != nil || tf.BackupCodes != nil {
			t.Fatalf("expected cleared two-factor, got %+v", tf)
		}
	})

	t.Run("WithBackupCode", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "eve@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA")

		err := f.uc.TwoFactorDisable(context.Background(), TwoFactorDisableInput{HolderID: h.ID, Code: "aaaaaaaa"})

		if err != nil {
			t.Fatalf("disable failed: %v", err)
		}
		if f.repo.holder(h.ID).TwoFactor.Enabled {
			t.Fatal("expected two-factor disabled")
		}
	})

	t.Run("WrongCode", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "fay@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA")
		before := f.repo.holder(h.ID).TwoFactor

		err := f.uc.TwoFactorDisable(context.Background(), TwoFactorDisableInput{HolderID: h.ID, Code: "CCCCCCCC"})

		assertErrorIs(t, err, ErrInvalidCode)
		after := f.repo.holder(h.ID).TwoFactor
		if !after.Enabled || !bytes.Equal(after.Secret, before.Secret) || !slices.Equal(after.BackupCodes, before.BackupCodes) {
			t.Fatalf("expected two-factor untouched, got %+v", after)
		}
	})

	t.Run("NotEnabled", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "gus@example.com")

		err := f.uc.TwoFactorDisable(context.Background(), TwoFactorDisableInput{HolderID: h.ID, Code: "AAAAAAAA"})

		assertErrorIs(t, err, ErrTwoFactorNotEnabled)
	})
}

func TestProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "hal@example.com")
		f.seedTwoFactor(t, h.ID, "AAAAAAAA", "BBBBBBBB")

		p, err := f.uc.Profile(context.Background(), ProfileInput{HolderID: h.ID})

		if err != nil {
			t.Fatalf("profile failed: %v", err)
		}
		if p.Email != h.Email || !p.TwoFactorEnabled || p.RemainingBackupCodes != 2 {
			t.Fatalf("unexpected profile %+v", p)
		}
	})

	t.Run("Banned", func(t *testing.T) {
		f := newFixture(t)
		h := f.seedHolder(t, "ida@example.com", withStatus(entity.HolderStatusBanned))

		_, err := f.uc.Profile(context.Background(), ProfileInput{HolderID: h.ID})

		assertErrorIs(t, err, ErrAccountNotAllowed)
	})
}
