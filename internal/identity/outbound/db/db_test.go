package db

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/mfa"
	"github.com/shandysiswandi/pawhaven/internal/pkg/pgmigrate"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("pawhaven"),
		postgres.WithUsername("pawhaven"),
		postgres.WithPassword("pawhaven"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pgmigrate.Up(ctx, pool, Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewDB(pool, instrument.NewNoop())
}

func seedHolder(t *testing.T, s *DB, id int64, email string) {
	t.Helper()

	if err := s.CreateHolder(context.Background(), entity.NewHolder{
		ID:                    id,
		Email:                 email,
		FullName:              "Test Holder",
		PasswordHash:          "$2a$10$notarealhash",
		Status:                entity.HolderStatusActive,
		VerificationToken:     "seed-digest-" + email,
		VerificationExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("seed holder: %v", err)
	}
}

func TestDB(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	t.Run("CreateAndGetHolder", func(t *testing.T) {

		// Arrange
		seedHolder(t, s, 1001, "create@example.com")

		// Act
		byEmail, err := s.GetHolderByEmail(ctx, "create@example.com")
		if err != nil {
			t.Fatalf("get by email: %v", err)
		}
		byID, err := s.GetHolderByID(ctx, 1001)
		if err != nil {
			t.Fatalf("get by id: %v", err)
		}

		// Assert
		if byEmail.ID != 1001 || byID.Email != "create@example.com" {
			t.Fatalf("unexpected holder: %+v / %+v", byEmail, byID)
		}
		if byID.EmailVerified || byID.TwoFactor.Enabled || byID.TwoFactor.Secret != nil || len(byID.TwoFactor.BackupCodes) != 0 {
			t.Fatalf("new holder must start unverified without two-factor: %+v", byID)
		}
		if byID.Status != entity.HolderStatusActive {
			t.Fatalf("status = %v, want Active", byID.Status)
		}
	})

	t.Run("DuplicateEmailConflicts", func(t *testing.T) {

		// Arrange
		seedHolder(t, s, 1002, "dup@example.com")

		// Act
		err := s.CreateHolder(ctx, entity.NewHolder{
			ID: 1003, Email: "dup@example.com", FullName: "Dup", PasswordHash: "x",
			Status: entity.HolderStatusActive, VerificationToken: "other", VerificationExpiresAt: time.Now(),
		})

		// Assert
		if !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("UnknownHolderNotFound", func(t *testing.T) {

		// Act
		_, err := s.GetHolderByID(ctx, 999999)

		// Assert
		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := s.UpdateVerificationToken(ctx, 999999, "x", time.Now()); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("update err = %v, want ErrNotFound", err)
		}
	})

	t.Run("VerificationTokenOverwriteAndConsume", func(t *testing.T) {

		// Arrange
		seedHolder(t, s, 1004, "verify@example.com")
		now := time.Now()
		if err := s.UpdateVerificationToken(ctx, 1004, "digest-t1", now.Add(24*time.Hour)); err != nil {
			t.Fatalf("issue t1: %v", err)
		}
		if err := s.UpdateVerificationToken(ctx, 1004, "digest-t2", now.Add(24*time.Hour)); err != nil {
			t.Fatalf("issue t2: %v", err)
		}

		// Act
		_, errOld := s.ConsumeVerificationToken(ctx, "digest-t1", now)
		id, errNew := s.ConsumeVerificationToken(ctx, "digest-t2", now)
		_, errAgain := s.ConsumeVerificationToken(ctx, "digest-t2", now)

		// Assert
		if !errors.Is(errOld, goerror.ErrNotFound) {
			t.Fatalf("overwritten token err = %v, want ErrNotFound", errOld)
		}
		if errNew != nil || id != 1004 {
			t.Fatalf("consume t2 = (%d, %v), want (1004, nil)", id, errNew)
		}
		if !errors.Is(errAgain, goerror.ErrNotFound) {
			t.Fatalf("second consume err = %v, want ErrNotFound", errAgain)
		}

		h, err := s.GetHolderByID(ctx, 1004)
		if err != nil {
			t.Fatalf("get holder: %v", err)
		}
		if !h.EmailVerified {
			t.Fatal("holder must be verified after consume")
		}
	})

	t.Run("ExpiredVerificationToken", func(t *testing.T) {

		// Arrange
		seedHolder(t, s, 1005, "expired@example.com")
		now := time.Now()
		if err := s.UpdateVerificationToken(ctx, 1005, "digest-expired", now.Add(-time.Second)); err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		_, err := s.ConsumeVerificationToken(ctx, "digest-expired", now)

		// Assert
		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("MutateTwoFactor", func(t *testing.T) {

		// Arrange
		seedHolder(t, s, 1006, "mfa@example.com")
		enabled := entity.TwoFactor{Enabled: true, Secret: []byte{1, 2, 3}, BackupCodes: []string{"AAAAAAAA", "BBBBBBBB"}}

		// Act
		err := s.MutateTwoFactor(ctx, 1006, func(cur entity.TwoFactor) (entity.TwoFactor, error) {
			if cur.Enabled {
				t.Fatal("holder must start disabled")
			}
			return enabled, nil
		})
		if err != nil {
			t.Fatalf("enable: %v", err)
		}
		rejected := goerror.NewBusiness("rejected", goerror.CodeInvalidInput)
		errRejected := s.MutateTwoFactor(ctx, 1006, func(entity.TwoFactor) (entity.TwoFactor, error) {
			return entity.TwoFactor{}, rejected
		})

		// Assert
		if !errors.Is(errRejected, rejected) {
			t.Fatalf("err = %v, want callback error", errRejected)
		}
		h, err := s.GetHolderByID(ctx, 1006)
		if err != nil {
			t.Fatalf("get holder: %v", err)
		}
		if !h.TwoFactor.Enabled || !slices.Equal(h.TwoFactor.Secret, enabled.Secret) || !slices.Equal(h.TwoFactor.BackupCodes, enabled.BackupCodes) {
			t.Fatalf("rejected mutation changed state: %+v", h.TwoFactor)
		}

		if err := s.MutateTwoFactor(ctx, 1006, func(entity.TwoFactor) (entity.TwoFactor, error) {
			return entity.TwoFactor{}, nil
		}); err != nil {
			t.Fatalf("disable: %v", err)
		}
		h, err = s.GetHolderByID(ctx, 1006)
		if err != nil {
			t.Fatalf("get holder: %v", err)
		}
		if h.TwoFactor.Enabled || h.TwoFactor.Secret != nil || h.TwoFactor.BackupCodes != nil {
			t.Fatalf("disable must clear all fields: %+v", h.TwoFactor)
		}
	})

	t.Run("ConcurrentBackupCodeConsumption", func(t *testing.T) {

		// Arrange
		seedHolder(t, s, 1007, "race@example.com")
		if err := s.MutateTwoFactor(ctx, 1007, func(entity.TwoFactor) (entity.TwoFactor, error) {
			return entity.TwoFactor{Enabled: true, Secret: []byte{9}, BackupCodes: []string{"AAAAAAAA", "BBBBBBBB"}}, nil
		}); err != nil {
			t.Fatalf("enable: %v", err)
		}
		spent := goerror.NewBusiness("spent", goerror.CodeInvalidInput)

		// Act
		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for range workers {
			wg.Go(func() {
				err := s.MutateTwoFactor(ctx, 1007, func(cur entity.TwoFactor) (entity.TwoFactor, error) {
					updated, ok := mfa.ConsumeBackupCode(cur.BackupCodes, "aaaaaaaa", mfa.PlainMatcher{})
					if !ok {
						return cur, spent
					}
					cur.BackupCodes = updated
					return cur, nil
				})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			})
		}
		wg.Wait()

		// Assert
		if successes != 1 {
			t.Fatalf("successes = %d, want exactly 1", successes)
		}
		h, err := s.GetHolderByID(ctx, 1007)
		if err != nil {
			t.Fatalf("get holder: %v", err)
		}
		if !slices.Equal(h.TwoFactor.BackupCodes, []string{"BBBBBBBB"}) {
			t.Fatalf("codes = %v, want [BBBBBBBB]", h.TwoFactor.BackupCodes)
		}
	})
}
