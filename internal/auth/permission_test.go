package auth_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/auth"
)

var _ = Describe("Permission", func() {
	Describe("ParsePermission", func() {
		It("should accept members of the enumeration", func() {
			p, err := auth.ParsePermission("leave_request_create")

			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(auth.PermissionLeaveRequestCreate))
		})

		It("should reject unknown names", func() {
			_, err := auth.ParsePermission("launch_missiles")

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownPermission))
		})
	})

	Describe("PermissionSet", func() {
		It("should collapse duplicates on insert", func() {
			set := auth.NewPermissionSet(
				auth.PermissionEmployeeRead,
				auth.PermissionEmployeeRead,
				auth.PermissionLeaveRequestRead,
			)

			Expect(set.Len()).To(Equal(2))
		})

		It("should union without duplicates", func() {
			a := auth.NewPermissionSet(auth.PermissionEmployeeRead, auth.PermissionLeaveRequestRead)
			b := auth.NewPermissionSet(auth.PermissionLeaveRequestRead, auth.PermissionLeaveRequestCreate)

			merged := a.Union(b)

			Expect(merged.Len()).To(Equal(3))
			Expect(merged.Contains(auth.PermissionEmployeeRead)).To(BeTrue())
			Expect(merged.Contains(auth.PermissionLeaveRequestCreate)).To(BeTrue())
		})

		It("should produce a sorted slice", func() {
			set := auth.NewPermissionSet(auth.PermissionUserRead, auth.PermissionAuditLogRead)

			Expect(set.Slice()).To(Equal([]auth.Permission{
				auth.PermissionAuditLogRead,
				auth.PermissionUserRead,
			}))
		})
	})
})

var _ = Describe("Resolver", func() {
	var (
		resolver *auth.Resolver
		roleRepo *mockRoleRepository
	)

	BeforeEach(func() {
		roleRepo = newMockRoleRepository()
		resolver = auth.NewResolver(roleRepo)
	})

	It("should resolve the empty set for a user with no role assignments", func() {
		set, err := resolver.Resolve(42)

		Expect(err).NotTo(HaveOccurred())
		Expect(set.Len()).To(BeZero())
	})

	It("should ignore inactive assignments", func() {
		roleRepo.assign(42, 1, false)
		roleRepo.grant(1, auth.PermissionEmployeeRead)

		set, err := resolver.Resolve(42)

		Expect(err).NotTo(HaveOccurred())
		Expect(set.Len()).To(BeZero())
	})

	It("should union permissions across roles without duplicates", func() {
		roleRepo.assign(42, 1, true)
		roleRepo.assign(42, 2, true)
		roleRepo.grant(1, auth.PermissionEmployeeRead, auth.PermissionLeaveRequestRead)
		roleRepo.grant(2, auth.PermissionLeaveRequestRead, auth.PermissionLeaveRequestCreate)

		set, err := resolver.Resolve(42)

		Expect(err).NotTo(HaveOccurred())
		Expect(set.Len()).To(Equal(3))
		Expect(set.ContainsAll(
			auth.PermissionEmployeeRead,
			auth.PermissionLeaveRequestRead,
			auth.PermissionLeaveRequestCreate,
		)).To(BeTrue())
	})

	It("should drop a role's permissions on the next resolve after deactivation", func() {
		roleRepo.assign(42, 1, true)
		roleRepo.grant(1, auth.PermissionEmployeeRead)

		set, err := resolver.Resolve(42)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.Contains(auth.PermissionEmployeeRead)).To(BeTrue())

		roleRepo.assignments[42][0].IsActive = false

		set, err = resolver.Resolve(42)
		Expect(err).NotTo(HaveOccurred())
		Expect(set.Contains(auth.PermissionEmployeeRead)).To(BeFalse())
	})
})

var _ = Describe("Guard", func() {
	var guard *auth.Guard

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		guard = auth.NewGuard(logger)
	})

	Describe("RequireAll", func() {
		It("should pass when every required permission is held", func() {
			resolved := auth.NewPermissionSet(auth.PermissionEmployeeRead, auth.PermissionEmployeeUpdate)

			err := guard.RequireAll(resolved, auth.PermissionEmployeeRead, auth.PermissionEmployeeUpdate)

			Expect(err).NotTo(HaveOccurred())
		})

		It("should fail with the generic forbidden error when one is missing", func() {
			resolved := auth.NewPermissionSet(auth.PermissionEmployeeRead)

			err := guard.RequireAll(resolved, auth.PermissionEmployeeRead, auth.PermissionEmployeeDelete)

			Expect(err).To(Equal(internal.ErrForbidden))
		})
	})

	Describe("RequireAny", func() {
		It("should pass on any overlap", func() {
			resolved := auth.NewPermissionSet(auth.PermissionLeaveRequestRead)

			err := guard.RequireAny(resolved, auth.PermissionLeaveRequestUpdate, auth.PermissionLeaveRequestRead)

			Expect(err).NotTo(HaveOccurred())
		})

		It("should fail on an empty intersection", func() {
			resolved := auth.NewPermissionSet(auth.PermissionLeaveRequestRead)

			err := guard.RequireAny(resolved, auth.PermissionUserDelete, auth.PermissionRoleDelete)

			Expect(err).To(Equal(internal.ErrForbidden))
		})
	})

	Describe("RequireOne", func() {
		It("should fail against the empty set", func() {
			err := guard.RequireOne(auth.NewPermissionSet(), auth.PermissionEmployeeRead)

			Expect(err).To(Equal(internal.ErrForbidden))
		})
	})
})
