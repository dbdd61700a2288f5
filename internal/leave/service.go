package leave

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/core/events"
)

// Repository persists leave applications. ApproveApplication and
// RejectApplication perform conditional transitions: they only touch rows
// still in Pending state and report ErrNotPending otherwise, so two
// concurrent processors cannot both win.
type Repository interface {
	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id string) (*Application, error)
	UpdateApplication(ctx context.Context, app *Application) error
	DeleteApplication(ctx context.Context, id string) error
	ApplicationsForPersonnel(ctx context.Context, personnelID string) ([]Application, error)
	PendingApplications(ctx context.Context) ([]Application, error)

	// ApproveApplication atomically flips the row to Approved and debits
	// the ledger row for (personnel, leave type, year) by app.TotalDays.
	// Both writes commit together or not at all.
	ApproveApplication(ctx context.Context, app *Application, year string) error
	RejectApplication(ctx context.Context, app *Application) error
}

// LedgerRepository manages leave balance rows.
type LedgerRepository interface {
	UpsertBalance(ctx context.Context, balance *Balance) error
	GetBalance(ctx context.Context, personnelID, leaveTypeID, year string) (*Balance, error)
	BalancesForPersonnel(ctx context.Context, personnelID string) ([]Balance, error)
}

// TypeRepository manages the leave type catalog.
type TypeRepository interface {
	CreateType(ctx context.Context, lt *LeaveType) error
	GetType(ctx context.Context, id string) (*LeaveType, error)
	UpdateType(ctx context.Context, lt *LeaveType) error
	ActiveTypes(ctx context.Context) ([]LeaveType, error)
	AllTypes(ctx context.Context) ([]LeaveType, error)
}

// MonetizationRepository manages monetization requests.
type MonetizationRepository interface {
	CreateMonetization(ctx context.Context, m *Monetization) error
	GetMonetization(ctx context.Context, id string) (*Monetization, error)
	ApproveMonetization(ctx context.Context, m *Monetization) error
	MonetizationsForPersonnel(ctx context.Context, personnelID string) ([]Monetization, error)
	PendingMonetizations(ctx context.Context) ([]Monetization, error)
}

type Service struct {
	repo          Repository
	ledger        LedgerRepository
	types         TypeRepository
	monetizations MonetizationRepository
	eventBus      *events.EventBus
	logger        *slog.Logger
}

func NewService(
	repo Repository,
	ledger LedgerRepository,
	types TypeRepository,
	monetizations MonetizationRepository,
	eventBus *events.EventBus,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:          repo,
		ledger:        ledger,
		types:         types,
		monetizations: monetizations,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// currentYear keys the ledger row an approval debits. The year is taken at
// approval time, not request time: an application filed in December and
// approved in January debits January's year.
func currentYear() string {
	return strconv.Itoa(time.Now().Year())
}

// Apply files a new application in Pending state. The ledger is not touched:
// credit only moves on approval.
func (s *Service) Apply(ctx context.Context, personnelID string, dto CreateApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	days, err := TotalDays(dto.StartDate, dto.EndDate)
	if err != nil {
		return nil, err
	}

	lt, err := s.types.GetType(ctx, dto.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	if !lt.IsActive {
		return nil, internal.ErrLeaveTypeNotFound
	}
	if lt.RequiresDocument && (dto.SupportingDocument == nil || *dto.SupportingDocument == "") {
		return nil, internal.NewValidationFieldError("supporting_document",
			"this leave type requires a supporting document", internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	app := &Application{
		ID:                 uuid.NewString(),
		PersonnelID:        personnelID,
		LeaveTypeID:        dto.LeaveTypeID,
		StartDate:          dto.StartDate,
		EndDate:            dto.EndDate,
		TotalDays:          days,
		Status:             StatusPending,
		Reason:             dto.Reason,
		SupportingDocument: dto.SupportingDocument,
		RequestDate:        now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.CreateApplication(ctx, app); err != nil {
		s.logger.Error("failed to create leave application",
			"personnel_id", personnelID, "leave_type_id", dto.LeaveTypeID, "error", err)
		return nil, internal.NewInternalError("could not create leave application", err)
	}

	s.logger.Info("leave application filed",
		"application_id", app.ID,
		"personnel_id", personnelID,
		"total_days", days)

	if s.eventBus != nil {
		event := events.NewLeaveEvent(events.EventLeaveApplied, app.ID, personnelID, days, 0)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish leave applied event", "error", err)
		}
	}

	return app, nil
}

// Edit lets the owner change a still-pending application. Dates are
// revalidated and total_days recomputed when the range changes.
func (s *Service) Edit(ctx context.Context, personnelID, applicationID string, dto UpdateApplicationDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.PersonnelID != personnelID {
		return nil, internal.ErrApplicationNotFound
	}
	if !app.CanBeEdited() {
		return nil, internal.ErrNotEditable
	}

	var newType *LeaveType
	if dto.LeaveTypeID != nil {
		lt, err := s.types.GetType(ctx, *dto.LeaveTypeID)
		if err != nil {
			return nil, err
		}
		if !lt.IsActive {
			return nil, internal.ErrLeaveTypeNotFound
		}
		newType = lt
		app.LeaveTypeID = lt.ID
	}
	if dto.StartDate != nil && dto.EndDate != nil {
		days, err := TotalDays(*dto.StartDate, *dto.EndDate)
		if err != nil {
			return nil, err
		}
		app.StartDate = *dto.StartDate
		app.EndDate = *dto.EndDate
		app.TotalDays = days
	}
	if dto.Reason != nil {
		app.Reason = *dto.Reason
	}
	if dto.SupportingDocument != nil {
		app.SupportingDocument = dto.SupportingDocument
	}
	if newType != nil && newType.RequiresDocument &&
		(app.SupportingDocument == nil || *app.SupportingDocument == "") {
		return nil, internal.NewValidationFieldError("supporting_document",
			"this leave type requires a supporting document", internal.ErrCodeValidationFailed)
	}
	app.UpdatedAt = time.Now()

	if err := s.repo.UpdateApplication(ctx, app); err != nil {
		s.logger.Error("failed to update leave application", "application_id", applicationID, "error", err)
		return nil, internal.NewInternalError("could not update leave application", err)
	}

	return app, nil
}

// Cancel removes a still-pending application. Processed applications stay on
// record and cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, personnelID, applicationID string) error {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.PersonnelID != personnelID {
		return internal.ErrApplicationNotFound
	}
	if !app.CanBeCancelled() {
		return internal.ErrNotCancellable
	}

	if err := s.repo.DeleteApplication(ctx, applicationID); err != nil {
		if errors.Is(err, internal.ErrNotCancellable) {
			// A processor won the race after the precondition read.
			return err
		}
		s.logger.Error("failed to cancel leave application", "application_id", applicationID, "error", err)
		return internal.NewInternalError("could not cancel leave application", err)
	}

	s.logger.Info("leave application cancelled",
		"application_id", applicationID, "personnel_id", personnelID)

	if s.eventBus != nil {
		event := events.NewLeaveEvent(events.EventLeaveCancelled, applicationID, personnelID, app.TotalDays, 0)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish leave cancelled event", "error", err)
		}
	}

	return nil
}

// Approve transitions a pending application to Approved and debits the
// owner's ledger row for the current year in the same transaction. When the
// row is absent or the remaining credit cannot cover total_days, the whole
// approval fails and the application stays Pending.
func (s *Service) Approve(ctx context.Context, processorID int64, applicationID string) (*Application, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.IsPending() {
		return nil, internal.ErrNotPending
	}

	now := time.Now()
	app.Status = StatusApproved
	app.ProcessedBy = &processorID
	app.ProcessedAt = &now
	app.UpdatedAt = now

	if err := s.repo.ApproveApplication(ctx, app, currentYear()); err != nil {
		s.logger.Warn("leave approval failed",
			"application_id", applicationID,
			"processor_id", processorID,
			"error", err)
		return nil, err
	}

	s.logger.Info("leave application approved",
		"application_id", applicationID,
		"personnel_id", app.PersonnelID,
		"processor_id", processorID,
		"total_days", app.TotalDays)

	if s.eventBus != nil {
		event := events.NewLeaveEvent(events.EventLeaveApproved, app.ID, app.PersonnelID, app.TotalDays, processorID)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish leave approved event", "error", err)
		}
	}

	return app, nil
}

// Reject transitions a pending application to Rejected. No ledger movement.
func (s *Service) Reject(ctx context.Context, processorID int64, applicationID string) (*Application, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.IsPending() {
		return nil, internal.ErrNotPending
	}

	now := time.Now()
	app.Status = StatusRejected
	app.ProcessedBy = &processorID
	app.ProcessedAt = &now
	app.UpdatedAt = now

	if err := s.repo.RejectApplication(ctx, app); err != nil {
		s.logger.Warn("leave rejection failed",
			"application_id", applicationID, "processor_id", processorID, "error", err)
		return nil, err
	}

	s.logger.Info("leave application rejected",
		"application_id", applicationID,
		"personnel_id", app.PersonnelID,
		"processor_id", processorID)

	if s.eventBus != nil {
		event := events.NewLeaveEvent(events.EventLeaveRejected, app.ID, app.PersonnelID, app.TotalDays, processorID)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish leave rejected event", "error", err)
		}
	}

	return app, nil
}

func (s *Service) GetApplication(ctx context.Context, id string) (*Application, error) {
	return s.repo.GetApplication(ctx, id)
}

func (s *Service) MyApplications(ctx context.Context, personnelID string) ([]Application, error) {
	return s.repo.ApplicationsForPersonnel(ctx, personnelID)
}

func (s *Service) PendingQueue(ctx context.Context) ([]Application, error) {
	return s.repo.PendingApplications(ctx)
}

// InitializeBalance seeds or replaces a ledger row. Used by HR when opening a
// new year or correcting credit grants.
func (s *Service) InitializeBalance(ctx context.Context, dto InitializeBalanceDTO) (*Balance, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.types.GetType(ctx, dto.LeaveTypeID); err != nil {
		return nil, err
	}

	balance := &Balance{
		ID:           uuid.NewString(),
		PersonnelID:  dto.PersonnelID,
		LeaveTypeID:  dto.LeaveTypeID,
		Year:         dto.Year,
		TotalCredits: dto.TotalCredits,
		LastUpdated:  time.Now(),
	}

	if err := s.ledger.UpsertBalance(ctx, balance); err != nil {
		if errors.Is(err, internal.ErrBalanceCapacity) {
			return nil, err
		}
		s.logger.Error("failed to initialize leave balance",
			"personnel_id", dto.PersonnelID, "leave_type_id", dto.LeaveTypeID, "year", dto.Year, "error", err)
		return nil, internal.NewInternalError("could not initialize leave balance", err)
	}

	s.logger.Info("leave balance initialized",
		"personnel_id", dto.PersonnelID,
		"leave_type_id", dto.LeaveTypeID,
		"year", dto.Year,
		"total_credits", dto.TotalCredits)

	return balance, nil
}

func (s *Service) BalancesFor(ctx context.Context, personnelID string) ([]Balance, error) {
	return s.ledger.BalancesForPersonnel(ctx, personnelID)
}

// CreateLeaveType adds a catalog entry.
func (s *Service) CreateLeaveType(ctx context.Context, dto CreateLeaveTypeDTO) (*LeaveType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	lt := &LeaveType{
		ID:               uuid.NewString(),
		Name:             dto.Name,
		Description:      dto.Description,
		MaxDays:          dto.MaxDays,
		RequiresDocument: dto.RequiresDocument,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.types.CreateType(ctx, lt); err != nil {
		s.logger.Error("failed to create leave type", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("could not create leave type", err)
	}

	return lt, nil
}

// UpdateLeaveType patches a catalog entry; setting is_active to false is the
// soft delete.
func (s *Service) UpdateLeaveType(ctx context.Context, id string, dto UpdateLeaveTypeDTO) (*LeaveType, error) {
	lt, err := s.types.GetType(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		lt.Name = *dto.Name
	}
	if dto.Description != nil {
		lt.Description = *dto.Description
	}
	if dto.MaxDays != nil {
		if *dto.MaxDays < 0 {
			return nil, internal.NewValidationFieldError("max_days",
				"max_days must not be negative", internal.ErrCodeValidationFailed)
		}
		lt.MaxDays = *dto.MaxDays
	}
	if dto.RequiresDocument != nil {
		lt.RequiresDocument = *dto.RequiresDocument
	}
	if dto.IsActive != nil {
		lt.IsActive = *dto.IsActive
	}
	lt.UpdatedAt = time.Now()

	if err := s.types.UpdateType(ctx, lt); err != nil {
		s.logger.Error("failed to update leave type", "leave_type_id", id, "error", err)
		return nil, internal.NewInternalError("could not update leave type", err)
	}

	return lt, nil
}

func (s *Service) ActiveLeaveTypes(ctx context.Context) ([]LeaveType, error) {
	return s.types.ActiveTypes(ctx)
}

func (s *Service) AllLeaveTypes(ctx context.Context) ([]LeaveType, error) {
	return s.types.AllTypes(ctx)
}

// RequestMonetization files a request to convert leave credit to pay. The
// requested days are checked against the current year's remaining credit at
// filing time; the ledger itself is not debited here or at approval.
func (s *Service) RequestMonetization(ctx context.Context, personnelID string, dto CreateMonetizationDTO) (*Monetization, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, personnelID, dto.LeaveTypeID, currentYear())
	if err != nil {
		return nil, err
	}
	if balance.Remaining() < dto.DaysToMonetize {
		return nil, internal.ErrInsufficientBalance
	}

	m := &Monetization{
		ID:             uuid.NewString(),
		PersonnelID:    personnelID,
		LeaveTypeID:    dto.LeaveTypeID,
		DaysToMonetize: dto.DaysToMonetize,
		Status:         StatusPending,
		RequestDate:    time.Now(),
	}

	if err := s.monetizations.CreateMonetization(ctx, m); err != nil {
		s.logger.Error("failed to create monetization request",
			"personnel_id", personnelID, "error", err)
		return nil, internal.NewInternalError("could not create monetization request", err)
	}

	return m, nil
}

// ApproveMonetization settles a pending monetization with an amount.
func (s *Service) ApproveMonetization(ctx context.Context, approverID int64, monetizationID string, dto ApproveMonetizationDTO) (*Monetization, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m, err := s.monetizations.GetMonetization(ctx, monetizationID)
	if err != nil {
		return nil, err
	}
	if !m.IsPending() {
		return nil, internal.ErrNotPending
	}

	now := time.Now()
	m.Status = StatusApproved
	m.Amount = &dto.Amount
	m.ApprovedBy = &approverID
	m.ApprovalDate = &now

	if err := s.monetizations.ApproveMonetization(ctx, m); err != nil {
		s.logger.Warn("monetization approval failed",
			"monetization_id", monetizationID, "approver_id", approverID, "error", err)
		return nil, err
	}

	s.logger.Info("monetization approved",
		"monetization_id", monetizationID,
		"personnel_id", m.PersonnelID,
		"approver_id", approverID,
		"amount", dto.Amount)

	if s.eventBus != nil {
		event := events.NewMonetizationEvent(m.ID, m.PersonnelID, dto.Amount, approverID)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish monetization approved event", "error", err)
		}
	}

	return m, nil
}

func (s *Service) MyMonetizations(ctx context.Context, personnelID string) ([]Monetization, error) {
	return s.monetizations.MonetizationsForPersonnel(ctx, personnelID)
}

func (s *Service) PendingMonetizations(ctx context.Context) ([]Monetization, error) {
	return s.monetizations.PendingMonetizations(ctx)
}
