package leave

import (
	"math"
	"time"

	"github.com/prasetyadi/hr-platform/internal"
)

// Application statuses. Pending is the only mutable state: terminal states are
// Approved and Rejected, and a Pending row may also be edited in place or
// cancelled (deleted) by its owner.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Application is a request to consume leave credit over a date range.
type Application struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	PersonnelID        string     `json:"personnel_id" gorm:"column:personnel_id;not null"`
	LeaveTypeID        string     `json:"leave_type_id" gorm:"column:leave_type_id;not null"`
	StartDate          time.Time  `json:"start_date" gorm:"column:start_date;type:date"`
	EndDate            time.Time  `json:"end_date" gorm:"column:end_date;type:date"`
	TotalDays          int        `json:"total_days" gorm:"column:total_days;not null"`
	Status             string     `json:"status" gorm:"column:status;default:Pending"`
	Reason             string     `json:"reason"`
	SupportingDocument *string    `json:"supporting_document,omitempty" gorm:"column:supporting_document"`
	RequestDate        time.Time  `json:"request_date" gorm:"column:request_date"`
	ProcessedBy        *int64     `json:"processed_by,omitempty" gorm:"column:processed_by"`
	ProcessedAt        *time.Time `json:"processed_at,omitempty" gorm:"column:processed_at"`
	CreatedAt          time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt          time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Application) TableName() string {
	return "leave_applications"
}

func (a *Application) IsPending() bool {
	return a.Status == StatusPending
}

func (a *Application) CanBeEdited() bool {
	return a.IsPending()
}

func (a *Application) CanBeCancelled() bool {
	return a.IsPending()
}

// TotalDays counts calendar days inclusive of both endpoints, e.g.
// 2024-12-15..2024-12-20 spans 6 days. End before start is InvalidRange.
func TotalDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, internal.ErrInvalidRange
	}
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1, nil
}

// LeaveType is a catalog entry; deactivation is a soft delete.
type LeaveType struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Description      string    `json:"description"`
	MaxDays          int       `json:"max_days" gorm:"column:max_days"`
	RequiresDocument bool      `json:"requires_document" gorm:"column:requires_document"`
	IsActive         bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt        time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// Balance is the ledger row: the single source of truth for remaining leave
// credit, keyed uniquely by (personnel, leave type, year). used_credits only
// grows through an approval; remaining is always derived, never stored.
type Balance struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	PersonnelID   string    `json:"personnel_id" gorm:"column:personnel_id;not null;uniqueIndex:idx_balance_key"`
	LeaveTypeID   string    `json:"leave_type_id" gorm:"column:leave_type_id;not null;uniqueIndex:idx_balance_key"`
	Year          string    `json:"year" gorm:"column:year;not null;uniqueIndex:idx_balance_key"`
	TotalCredits  float64   `json:"total_credits" gorm:"column:total_credits"`
	UsedCredits   float64   `json:"used_credits" gorm:"column:used_credits;check:chk_balance_capacity,used_credits <= total_credits"`
	EarnedCredits float64   `json:"earned_credits" gorm:"column:earned_credits"`
	LastUpdated   time.Time `json:"last_updated" gorm:"column:last_updated"`
}

func (Balance) TableName() string {
	return "leave_balances"
}

func (b *Balance) Remaining() float64 {
	return b.TotalCredits - b.UsedCredits
}

// Monetization is a proposal to convert leave credit to pay. It shares the
// Pending/Approved/Rejected lifecycle but its approval does not debit the
// ledger; usage and monetization are tracked independently.
type Monetization struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	PersonnelID    string     `json:"personnel_id" gorm:"column:personnel_id;not null"`
	LeaveTypeID    string     `json:"leave_type_id" gorm:"column:leave_type_id;not null"`
	DaysToMonetize float64    `json:"days_to_monetize" gorm:"column:days_to_monetize"`
	Status         string     `json:"status" gorm:"column:status;default:Pending"`
	Amount         *float64   `json:"amount,omitempty"`
	ApprovedBy     *int64     `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovalDate   *time.Time `json:"approval_date,omitempty" gorm:"column:approval_date"`
	RequestDate    time.Time  `json:"request_date" gorm:"column:request_date"`
}

func (Monetization) TableName() string {
	return "leave_monetizations"
}

func (m *Monetization) IsPending() bool {
	return m.Status == StatusPending
}
