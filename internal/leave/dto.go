package leave

import (
	"time"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/core/common/validation"
)

// CreateApplicationDTO is the request payload for filing a leave application.
type CreateApplicationDTO struct {
	LeaveTypeID        string    `json:"leave_type_id"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Reason             string    `json:"reason"`
	SupportingDocument *string   `json:"supporting_document,omitempty"`
}

func (dto CreateApplicationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("leave_type_id", dto.LeaveTypeID).Required()
	v.Field("start_date", dto.StartDate).Required()
	v.Field("end_date", dto.EndDate).Required()
	v.Field("reason", dto.Reason).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateApplicationDTO carries the fields an owner may change while the
// application is still pending. Nil means leave unchanged.
type UpdateApplicationDTO struct {
	LeaveTypeID        *string    `json:"leave_type_id,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Reason             *string    `json:"reason,omitempty"`
	SupportingDocument *string    `json:"supporting_document,omitempty"`
}

func (dto UpdateApplicationDTO) Validate() error {
	// Dates come as a pair so the range is always revalidated whole.
	if (dto.StartDate != nil) != (dto.EndDate != nil) {
		return internal.NewValidationFieldError("start_date",
			"start_date and end_date must be supplied together", internal.ErrCodeValidationFailed)
	}
	if dto.Reason != nil {
		v := validation.NewValidator()
		v.Field("reason", *dto.Reason).MaxLength(500)
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// InitializeBalanceDTO seeds or tops up a ledger row.
type InitializeBalanceDTO struct {
	PersonnelID  string  `json:"personnel_id"`
	LeaveTypeID  string  `json:"leave_type_id"`
	Year         string  `json:"year"`
	TotalCredits float64 `json:"total_credits"`
}

func (dto InitializeBalanceDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("personnel_id", dto.PersonnelID).Required()
	v.Field("leave_type_id", dto.LeaveTypeID).Required()
	v.Field("year", dto.Year).Required()
	v.Field("total_credits", dto.TotalCredits).MinFloat(0, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// CreateLeaveTypeDTO for catalog administration.
type CreateLeaveTypeDTO struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	MaxDays          int    `json:"max_days"`
	RequiresDocument bool   `json:"requires_document"`
}

func (dto CreateLeaveTypeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("max_days", int64(dto.MaxDays)).MinInt(0, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateLeaveTypeDTO struct {
	Name             *string `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	MaxDays          *int    `json:"max_days,omitempty"`
	RequiresDocument *bool   `json:"requires_document,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

// CreateMonetizationDTO files a monetization request.
type CreateMonetizationDTO struct {
	LeaveTypeID    string  `json:"leave_type_id"`
	DaysToMonetize float64 `json:"days_to_monetize"`
}

func (dto CreateMonetizationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("leave_type_id", dto.LeaveTypeID).Required()
	v.Field("days_to_monetize", dto.DaysToMonetize).PositiveFloat(internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ApproveMonetizationDTO carries the settlement amount.
type ApproveMonetizationDTO struct {
	Amount float64 `json:"amount"`
}

func (dto ApproveMonetizationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).PositiveFloat(internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
