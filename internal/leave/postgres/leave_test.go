package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/leave"
	leavePostgres "github.com/prasetyadi/hr-platform/internal/leave/postgres"
)

func TestLeavePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Postgres Suite")
}

var _ = Describe("Leave Repositories", func() {
	var (
		db      *gorm.DB
		ctx     context.Context
		apps    *leavePostgres.LeaveRepository
		ledger  *leavePostgres.BalanceRepository
		types   *leavePostgres.TypeRepository
		mons    *leavePostgres.MonetizationRepository
		nowTime time.Time
	)

	const (
		personnelID = "personnel-1"
		typeID      = "type-vacation"
		year        = "2025"
	)

	pendingApp := func(id string, days int) *leave.Application {
		return &leave.Application{
			ID:          id,
			PersonnelID: personnelID,
			LeaveTypeID: typeID,
			StartDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days-1),
			TotalDays:   days,
			Status:      leave.StatusPending,
			RequestDate: nowTime,
		}
	}

	approveWith := func(app *leave.Application) error {
		processor := int64(42)
		app.Status = leave.StatusApproved
		app.ProcessedBy = &processor
		app.ProcessedAt = &nowTime
		app.UpdatedAt = nowTime
		return apps.ApproveApplication(ctx, app, year)
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		nowTime = time.Now()

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&leave.Application{}, &leave.Balance{}, &leave.LeaveType{}, &leave.Monetization{})
		Expect(err).NotTo(HaveOccurred())

		apps = leavePostgres.NewLeaveRepository(db)
		ledger = leavePostgres.NewBalanceRepository(db)
		types = leavePostgres.NewTypeRepository(db)
		mons = leavePostgres.NewMonetizationRepository(db)

		Expect(db.Create(&leave.Balance{
			ID:           "balance-1",
			PersonnelID:  personnelID,
			LeaveTypeID:  typeID,
			Year:         year,
			TotalCredits: 10,
		}).Error).NotTo(HaveOccurred())
	})

	Describe("ApproveApplication", func() {
		It("flips the status and debits the ledger atomically", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())

			Expect(approveWith(app)).To(Succeed())

			stored, err := apps.GetApplication(ctx, "app-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))
			Expect(stored.ProcessedBy).NotTo(BeNil())

			balance, err := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.UsedCredits).To(Equal(4.0))
			Expect(balance.Remaining()).To(Equal(6.0))
		})

		It("refuses a second approval of the same row", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())
			Expect(approveWith(app)).To(Succeed())

			err := approveWith(pendingApp("app-1", 4))
			Expect(err).To(MatchError(internal.ErrNotPending))

			balance, err := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.UsedCredits).To(Equal(4.0))
		})

		It("rolls back the status flip when the ledger row is missing", func() {
			app := pendingApp("app-1", 4)
			app.LeaveTypeID = "type-without-ledger"
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())

			err := approveWith(app)
			Expect(err).To(MatchError(internal.ErrLedgerRowMissing))

			stored, getErr := apps.GetApplication(ctx, "app-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusPending))
		})

		It("rolls back the status flip when credit cannot cover the request", func() {
			app := pendingApp("app-1", 11)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())

			err := approveWith(app)
			Expect(err).To(MatchError(internal.ErrInsufficientBalance))

			stored, getErr := apps.GetApplication(ctx, "app-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusPending))

			balance, getErr := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(balance.UsedCredits).To(BeZero())
		})

		It("allows approvals that land exactly on the capacity limit", func() {
			app := pendingApp("app-1", 10)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())

			Expect(approveWith(app)).To(Succeed())

			balance, err := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.Remaining()).To(BeZero())
		})
	})

	Describe("RejectApplication", func() {
		It("flips a pending row without touching the ledger", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())

			processor := int64(42)
			app.Status = leave.StatusRejected
			app.ProcessedBy = &processor
			app.ProcessedAt = &nowTime
			Expect(apps.RejectApplication(ctx, app)).To(Succeed())

			stored, err := apps.GetApplication(ctx, "app-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusRejected))

			balance, err := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.UsedCredits).To(BeZero())
		})

		It("refuses to reject an already approved row", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())
			Expect(approveWith(app)).To(Succeed())

			err := apps.RejectApplication(ctx, pendingApp("app-1", 4))
			Expect(err).To(MatchError(internal.ErrNotPending))
		})
	})

	Describe("DeleteApplication", func() {
		It("deletes a pending row", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())

			Expect(apps.DeleteApplication(ctx, "app-1")).To(Succeed())

			_, err := apps.GetApplication(ctx, "app-1")
			Expect(err).To(MatchError(internal.ErrApplicationNotFound))
		})

		It("fails on a row a processor already approved", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())
			Expect(approveWith(app)).To(Succeed())

			err := apps.DeleteApplication(ctx, "app-1")
			Expect(err).To(MatchError(internal.ErrNotCancellable))

			stored, getErr := apps.GetApplication(ctx, "app-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))
		})
	})

	Describe("PendingApplications", func() {
		It("returns pending rows oldest first", func() {
			older := pendingApp("app-old", 2)
			older.RequestDate = nowTime.Add(-time.Hour)
			newer := pendingApp("app-new", 2)
			newer.RequestDate = nowTime

			Expect(apps.CreateApplication(ctx, newer)).To(Succeed())
			Expect(apps.CreateApplication(ctx, older)).To(Succeed())

			pending, err := apps.PendingApplications(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(2))
			Expect(pending[0].ID).To(Equal("app-old"))
			Expect(pending[1].ID).To(Equal("app-new"))
		})
	})

	Describe("UpsertBalance", func() {
		It("resets the credit grant when the ledger key already exists", func() {
			err := ledger.UpsertBalance(ctx, &leave.Balance{
				ID:           "balance-2",
				PersonnelID:  personnelID,
				LeaveTypeID:  typeID,
				Year:         year,
				TotalCredits: 20,
			})
			Expect(err).NotTo(HaveOccurred())

			balance, err := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.TotalCredits).To(Equal(20.0))
			// The original row survives; only the grant columns change.
			Expect(balance.ID).To(Equal("balance-1"))
		})

		It("preserves used credits across an upsert", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())
			Expect(approveWith(app)).To(Succeed())

			err := ledger.UpsertBalance(ctx, &leave.Balance{
				ID:           "balance-2",
				PersonnelID:  personnelID,
				LeaveTypeID:  typeID,
				Year:         year,
				TotalCredits: 20,
			})
			Expect(err).NotTo(HaveOccurred())

			balance, err := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.UsedCredits).To(Equal(4.0))
			Expect(balance.Remaining()).To(Equal(16.0))
		})
	})

	Describe("UpsertBalance capacity and earned credit", func() {
		BeforeEach(func() {
			Expect(db.Model(&leave.Balance{}).
				Where("id = ?", "balance-1").
				Update("earned_credits", 2.5).Error).NotTo(HaveOccurred())
		})

		It("leaves earned credits untouched", func() {
			err := ledger.UpsertBalance(ctx, &leave.Balance{
				ID:           "balance-2",
				PersonnelID:  personnelID,
				LeaveTypeID:  typeID,
				Year:         year,
				TotalCredits: 20,
			})
			Expect(err).NotTo(HaveOccurred())

			balance, err := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(err).NotTo(HaveOccurred())
			Expect(balance.EarnedCredits).To(Equal(2.5))
		})

		It("refuses a grant below already used credits", func() {
			app := pendingApp("app-1", 4)
			Expect(apps.CreateApplication(ctx, app)).To(Succeed())
			Expect(approveWith(app)).To(Succeed())

			err := ledger.UpsertBalance(ctx, &leave.Balance{
				ID:           "balance-2",
				PersonnelID:  personnelID,
				LeaveTypeID:  typeID,
				Year:         year,
				TotalCredits: 2,
			})
			Expect(err).To(MatchError(internal.ErrBalanceCapacity))

			balance, getErr := ledger.GetBalance(ctx, personnelID, typeID, year)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(balance.TotalCredits).To(Equal(10.0))
		})
	})

	Describe("GetBalance", func() {
		It("reports a missing ledger row", func() {
			_, err := ledger.GetBalance(ctx, personnelID, typeID, "1999")
			Expect(err).To(MatchError(internal.ErrLedgerRowMissing))
		})
	})

	Describe("TypeRepository", func() {
		BeforeEach(func() {
			Expect(types.CreateType(ctx, &leave.LeaveType{
				ID: "type-a", Name: "Vacation Leave", MaxDays: 15, IsActive: true,
			})).To(Succeed())
			Expect(types.CreateType(ctx, &leave.LeaveType{
				ID: "type-b", Name: "Retired Leave", IsActive: false,
			})).To(Succeed())
		})

		It("lists only active types for requesters", func() {
			active, err := types.ActiveTypes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].ID).To(Equal("type-a"))
		})

		It("lists everything for administrators", func() {
			all, err := types.AllTypes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("maps a missing type to its sentinel", func() {
			_, err := types.GetType(ctx, "nope")
			Expect(err).To(MatchError(internal.ErrLeaveTypeNotFound))
		})
	})

	Describe("MonetizationRepository", func() {
		newPendingMon := func(id string) *leave.Monetization {
			return &leave.Monetization{
				ID:             id,
				PersonnelID:    personnelID,
				LeaveTypeID:    typeID,
				DaysToMonetize: 5,
				Status:         leave.StatusPending,
				RequestDate:    nowTime,
			}
		}

		It("settles a pending request once", func() {
			Expect(mons.CreateMonetization(ctx, newPendingMon("mon-1"))).To(Succeed())

			amount := 2500.0
			approver := int64(42)
			settled := newPendingMon("mon-1")
			settled.Status = leave.StatusApproved
			settled.Amount = &amount
			settled.ApprovedBy = &approver
			settled.ApprovalDate = &nowTime

			Expect(mons.ApproveMonetization(ctx, settled)).To(Succeed())
			Expect(mons.ApproveMonetization(ctx, settled)).To(MatchError(internal.ErrNotPending))

			stored, err := mons.GetMonetization(ctx, "mon-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))
			Expect(*stored.Amount).To(Equal(2500.0))
		})

		It("maps a missing request to its sentinel", func() {
			_, err := mons.GetMonetization(ctx, "nope")
			Expect(err).To(MatchError(internal.ErrMonetizationNotFound))
		})
	})
})
