package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/leave"
)

// LeaveRepository implements the leave repository interfaces using GORM.
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) CreateApplication(ctx context.Context, app *leave.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *LeaveRepository) GetApplication(ctx context.Context, id string) (*leave.Application, error) {
	var app leave.Application
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *LeaveRepository) UpdateApplication(ctx context.Context, app *leave.Application) error {
	app.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(app).Error
}

// DeleteApplication removes a Pending row. A processor committing between the
// caller's precondition read and this delete leaves zero rows matching, and
// the cancellation must fail rather than silently keep the Approved row.
func (r *LeaveRepository) DeleteApplication(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, leave.StatusPending).
		Delete(&leave.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrNotCancellable
	}
	return nil
}

func (r *LeaveRepository) ApplicationsForPersonnel(ctx context.Context, personnelID string) ([]leave.Application, error) {
	var apps []leave.Application
	err := r.db.WithContext(ctx).
		Where("personnel_id = ?", personnelID).
		Order("request_date DESC").
		Find(&apps).Error
	return apps, err
}

func (r *LeaveRepository) PendingApplications(ctx context.Context) ([]leave.Application, error) {
	var apps []leave.Application
	err := r.db.WithContext(ctx).
		Where("status = ?", leave.StatusPending).
		Order("request_date ASC"). // FIFO for processors
		Find(&apps).Error
	return apps, err
}

// ApproveApplication flips the application to Approved and debits the ledger
// row in one transaction. Both updates are conditional: the status flip only
// matches a Pending row, and the debit only matches a row whose remaining
// credit covers total_days. Either condition failing rolls the whole thing
// back, which is what makes concurrent approvals safe without row locks.
func (r *LeaveRepository) ApproveApplication(ctx context.Context, app *leave.Application, year string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&leave.Application{}).
			Where("id = ? AND status = ?", app.ID, leave.StatusPending).
			Updates(map[string]interface{}{
				"status":       leave.StatusApproved,
				"processed_by": app.ProcessedBy,
				"processed_at": app.ProcessedAt,
				"updated_at":   app.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another processor got here first.
			return internal.ErrNotPending
		}

		debit := tx.Model(&leave.Balance{}).
			Where("personnel_id = ? AND leave_type_id = ? AND year = ?",
				app.PersonnelID, app.LeaveTypeID, year).
			Where("used_credits + ? <= total_credits", float64(app.TotalDays)).
			Updates(map[string]interface{}{
				"used_credits": gorm.Expr("used_credits + ?", float64(app.TotalDays)),
				"last_updated": time.Now(),
			})
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			// Distinguish a missing ledger row from one without capacity.
			var count int64
			if err := tx.Model(&leave.Balance{}).
				Where("personnel_id = ? AND leave_type_id = ? AND year = ?",
					app.PersonnelID, app.LeaveTypeID, year).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return internal.ErrLedgerRowMissing
			}
			return internal.ErrInsufficientBalance
		}

		return nil
	})
}

// RejectApplication conditionally flips a Pending row to Rejected.
func (r *LeaveRepository) RejectApplication(ctx context.Context, app *leave.Application) error {
	res := r.db.WithContext(ctx).Model(&leave.Application{}).
		Where("id = ? AND status = ?", app.ID, leave.StatusPending).
		Updates(map[string]interface{}{
			"status":       leave.StatusRejected,
			"processed_by": app.ProcessedBy,
			"processed_at": app.ProcessedAt,
			"updated_at":   app.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrNotPending
	}
	return nil
}

// BalanceRepository implements leave.LedgerRepository using GORM.
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// UpsertBalance inserts a ledger row or, when the (personnel, leave type,
// year) key already exists, resets its credit grant in place. used_credits and
// earned_credits are never touched by the upsert. A grant lowered below what
// is already used trips chk_balance_capacity and surfaces as a conflict.
func (r *BalanceRepository) UpsertBalance(ctx context.Context, balance *leave.Balance) error {
	balance.LastUpdated = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "personnel_id"}, {Name: "leave_type_id"}, {Name: "year"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"total_credits", "last_updated"}),
	}).Create(balance).Error
	if err != nil && strings.Contains(err.Error(), "chk_balance_capacity") {
		return internal.ErrBalanceCapacity
	}
	return err
}

func (r *BalanceRepository) GetBalance(ctx context.Context, personnelID, leaveTypeID, year string) (*leave.Balance, error) {
	var balance leave.Balance
	err := r.db.WithContext(ctx).
		Where("personnel_id = ? AND leave_type_id = ? AND year = ?", personnelID, leaveTypeID, year).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrLedgerRowMissing
		}
		return nil, err
	}
	return &balance, nil
}

func (r *BalanceRepository) BalancesForPersonnel(ctx context.Context, personnelID string) ([]leave.Balance, error) {
	var balances []leave.Balance
	err := r.db.WithContext(ctx).
		Where("personnel_id = ?", personnelID).
		Order("year DESC").
		Find(&balances).Error
	return balances, err
}

// TypeRepository implements leave.TypeRepository using GORM.
type TypeRepository struct {
	db *gorm.DB
}

func NewTypeRepository(db *gorm.DB) *TypeRepository {
	return &TypeRepository{db: db}
}

func (r *TypeRepository) CreateType(ctx context.Context, lt *leave.LeaveType) error {
	return r.db.WithContext(ctx).Create(lt).Error
}

func (r *TypeRepository) GetType(ctx context.Context, id string) (*leave.LeaveType, error) {
	var lt leave.LeaveType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrLeaveTypeNotFound
		}
		return nil, err
	}
	return &lt, nil
}

func (r *TypeRepository) UpdateType(ctx context.Context, lt *leave.LeaveType) error {
	lt.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(lt).Error
}

func (r *TypeRepository) ActiveTypes(ctx context.Context) ([]leave.LeaveType, error) {
	var types []leave.LeaveType
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *TypeRepository) AllTypes(ctx context.Context) ([]leave.LeaveType, error) {
	var types []leave.LeaveType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

// MonetizationRepository implements leave.MonetizationRepository using GORM.
type MonetizationRepository struct {
	db *gorm.DB
}

func NewMonetizationRepository(db *gorm.DB) *MonetizationRepository {
	return &MonetizationRepository{db: db}
}

func (r *MonetizationRepository) CreateMonetization(ctx context.Context, m *leave.Monetization) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MonetizationRepository) GetMonetization(ctx context.Context, id string) (*leave.Monetization, error) {
	var m leave.Monetization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrMonetizationNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ApproveMonetization conditionally settles a Pending request.
func (r *MonetizationRepository) ApproveMonetization(ctx context.Context, m *leave.Monetization) error {
	res := r.db.WithContext(ctx).Model(&leave.Monetization{}).
		Where("id = ? AND status = ?", m.ID, leave.StatusPending).
		Updates(map[string]interface{}{
			"status":        leave.StatusApproved,
			"amount":        m.Amount,
			"approved_by":   m.ApprovedBy,
			"approval_date": m.ApprovalDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrNotPending
	}
	return nil
}

func (r *MonetizationRepository) MonetizationsForPersonnel(ctx context.Context, personnelID string) ([]leave.Monetization, error) {
	var ms []leave.Monetization
	err := r.db.WithContext(ctx).
		Where("personnel_id = ?", personnelID).
		Order("request_date DESC").
		Find(&ms).Error
	return ms, err
}

func (r *MonetizationRepository) PendingMonetizations(ctx context.Context) ([]leave.Monetization, error) {
	var ms []leave.Monetization
	err := r.db.WithContext(ctx).
		Where("status = ?", leave.StatusPending).
		Order("request_date ASC").
		Find(&ms).Error
	return ms, err
}
