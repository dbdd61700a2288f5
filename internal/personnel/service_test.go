package personnel_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/personnel"
)

func TestPersonnel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Personnel Suite")
}

type mockRepository struct {
	byID     map[string]*personnel.Personnel
	byUserID map[int64]*personnel.Personnel

	listLimit  int
	listOffset int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		byID:     make(map[string]*personnel.Personnel),
		byUserID: make(map[int64]*personnel.Personnel),
	}
}

func (m *mockRepository) Create(_ context.Context, p *personnel.Personnel) error {
	m.byID[p.ID] = p
	m.byUserID[p.UserID] = p
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*personnel.Personnel, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, internal.ErrPersonnelNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockRepository) GetByUserID(_ context.Context, userID int64) (*personnel.Personnel, error) {
	p, ok := m.byUserID[userID]
	if !ok {
		return nil, internal.ErrPersonnelNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockRepository) Update(_ context.Context, p *personnel.Personnel) error {
	m.byID[p.ID] = p
	m.byUserID[p.UserID] = p
	return nil
}

func (m *mockRepository) List(_ context.Context, limit, offset int) ([]personnel.Personnel, error) {
	m.listLimit = limit
	m.listOffset = offset
	var out []personnel.Personnel
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

var _ = Describe("Personnel Service", func() {
	var (
		repo    *mockRepository
		service *personnel.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = personnel.NewService(repo, logger)
	})

	Describe("Create", func() {
		It("creates an active record linked to a login user", func() {
			p, err := service.Create(ctx, personnel.CreatePersonnelDTO{
				UserID:    7,
				FirstName: "Maria",
				LastName:  "Santos",
				Position:  "Accountant",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).NotTo(BeEmpty())
			Expect(p.IsActive).To(BeTrue())
			Expect(p.FullName()).To(Equal("Maria Santos"))
		})

		It("rejects a record without a name", func() {
			_, err := service.Create(ctx, personnel.CreatePersonnelDTO{UserID: 7})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByUserID", func() {
		It("resolves the record behind a login user", func() {
			created, err := service.Create(ctx, personnel.CreatePersonnelDTO{
				UserID:    7,
				FirstName: "Maria",
				LastName:  "Santos",
			})
			Expect(err).NotTo(HaveOccurred())

			found, err := service.GetByUserID(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(created.ID))
		})

		It("reports an unlinked user", func() {
			_, err := service.GetByUserID(ctx, 99)
			Expect(err).To(MatchError(internal.ErrPersonnelNotFound))
		})
	})

	Describe("Update", func() {
		It("patches only the supplied fields", func() {
			created, err := service.Create(ctx, personnel.CreatePersonnelDTO{
				UserID:    7,
				FirstName: "Maria",
				LastName:  "Santos",
				Position:  "Accountant",
			})
			Expect(err).NotTo(HaveOccurred())

			position := "Senior Accountant"
			updated, err := service.Update(ctx, created.ID, personnel.UpdatePersonnelDTO{Position: &position})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Position).To(Equal("Senior Accountant"))
			Expect(updated.FirstName).To(Equal("Maria"))
		})

		It("reports a missing record", func() {
			position := "Senior Accountant"
			_, err := service.Update(ctx, "nope", personnel.UpdatePersonnelDTO{Position: &position})
			Expect(err).To(MatchError(internal.ErrPersonnelNotFound))
		})
	})

	Describe("List", func() {
		It("clamps page sizes to sane bounds", func() {
			_, err := service.List(ctx, 0, -5)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.listLimit).To(Equal(50))
			Expect(repo.listOffset).To(Equal(0))

			_, err = service.List(ctx, 500, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.listLimit).To(Equal(50))
			Expect(repo.listOffset).To(Equal(10))
		})
	})
})
