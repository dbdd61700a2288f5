package personnel

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prasetyadi/hr-platform/internal"
)

type Repository interface {
	Create(ctx context.Context, p *Personnel) error
	GetByID(ctx context.Context, id string) (*Personnel, error)
	GetByUserID(ctx context.Context, userID int64) (*Personnel, error)
	Update(ctx context.Context, p *Personnel) error
	List(ctx context.Context, limit, offset int) ([]Personnel, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, dto CreatePersonnelDTO) (*Personnel, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Personnel{
		ID:         uuid.NewString(),
		UserID:     dto.UserID,
		FirstName:  dto.FirstName,
		LastName:   dto.LastName,
		Position:   dto.Position,
		Department: dto.Department,
		HireDate:   dto.HireDate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create personnel record", "user_id", dto.UserID, "error", err)
		return nil, internal.NewInternalError("could not create personnel record", err)
	}

	s.logger.Info("personnel record created", "personnel_id", p.ID, "user_id", p.UserID)
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Personnel, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUserID resolves the personnel record behind a login user.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Personnel, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) Update(ctx context.Context, id string, dto UpdatePersonnelDTO) (*Personnel, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		p.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		p.LastName = *dto.LastName
	}
	if dto.Position != nil {
		p.Position = *dto.Position
	}
	if dto.Department != nil {
		p.Department = *dto.Department
	}
	if dto.HireDate != nil {
		p.HireDate = dto.HireDate
	}
	if dto.IsActive != nil {
		p.IsActive = *dto.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update personnel record", "personnel_id", id, "error", err)
		return nil, internal.NewInternalError("could not update personnel record", err)
	}

	return p, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Personnel, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
