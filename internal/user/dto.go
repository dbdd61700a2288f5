package user

import (
	"github.com/prasetyadi/hr-platform/internal/core/common/validation"
)

// AssignRoleDTO grants a role to a user.
type AssignRoleDTO struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

func (dto AssignRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("role_id", dto.RoleID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
