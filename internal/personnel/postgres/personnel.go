package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/personnel"
)

// PersonnelRepository implements personnel.Repository using GORM.
type PersonnelRepository struct {
	db *gorm.DB
}

func NewPersonnelRepository(db *gorm.DB) *PersonnelRepository {
	return &PersonnelRepository{db: db}
}

func (r *PersonnelRepository) Create(ctx context.Context, p *personnel.Personnel) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PersonnelRepository) GetByID(ctx context.Context, id string) (*personnel.Personnel, error) {
	var p personnel.Personnel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPersonnelNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PersonnelRepository) GetByUserID(ctx context.Context, userID int64) (*personnel.Personnel, error) {
	var p personnel.Personnel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPersonnelNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PersonnelRepository) Update(ctx context.Context, p *personnel.Personnel) error {
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PersonnelRepository) List(ctx context.Context, limit, offset int) ([]personnel.Personnel, error) {
	var records []personnel.Personnel
	err := r.db.WithContext(ctx).
		Order("last_name ASC, first_name ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}
