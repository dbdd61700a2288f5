package personnel

import (
	"time"

	"github.com/prasetyadi/hr-platform/internal/core/common/validation"
)

// CreatePersonnelDTO registers an employee record for an existing user.
type CreatePersonnelDTO struct {
	UserID     int64      `json:"user_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Position   string     `json:"position"`
	Department string     `json:"department"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

func (dto CreatePersonnelDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("first_name", dto.FirstName).Required().MaxLength(100)
	v.Field("last_name", dto.LastName).Required().MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdatePersonnelDTO patches the employee record. Nil means leave unchanged.
type UpdatePersonnelDTO struct {
	FirstName  *string    `json:"first_name,omitempty"`
	LastName   *string    `json:"last_name,omitempty"`
	Position   *string    `json:"position,omitempty"`
	Department *string    `json:"department,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
}
