package usecase

import (
	"context"

	"github.com/shandysiswandi/pawhaven/internal/identity/entity"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
)

type ProfileInput struct {
	HolderID int64 `validate:"required,gt=0"`
}

func (s *Usecase) Profile(ctx context.Context, in ProfileInput) (*entity.Profile, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	holder, err := s.getAuthenticatedHolder(ctx, in.HolderID)
	if err != nil {
		return nil, err
	}

	profile := holder.Profile()
	return &profile, nil
}
