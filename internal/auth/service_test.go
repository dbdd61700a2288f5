package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/prasetyadi/hr-platform/internal"
	"github.com/prasetyadi/hr-platform/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

const testSecret = "test-secret-test-secret-test-secret!"

// Mock user repository for testing
type mockUserRepository struct {
	users           map[int64]*auth.User
	credentialError error
	lookupError     error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*auth.User)}
}

func (m *mockUserRepository) addUser(u *auth.User) {
	m.users[u.ID] = u
}

func (m *mockUserRepository) GetCredentialsByUsername(username string) (int64, string, error) {
	if m.credentialError != nil {
		return 0, "", m.credentialError
	}
	for _, u := range m.users {
		if u.Username == username {
			return u.ID, u.PasswordHash, nil
		}
	}
	return 0, "", errors.New("user not found")
}

func (m *mockUserRepository) GetUserByID(id int64) (*auth.User, error) {
	if m.lookupError != nil {
		return nil, m.lookupError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

// Mock role repository for testing
type mockRoleRepository struct {
	assignments map[int64][]auth.RoleAssignment
	permissions map[int64][]auth.Permission
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{
		assignments: make(map[int64][]auth.RoleAssignment),
		permissions: make(map[int64][]auth.Permission),
	}
}

func (m *mockRoleRepository) assign(userID, roleID int64, active bool) {
	m.assignments[userID] = append(m.assignments[userID], auth.RoleAssignment{
		UserID:   userID,
		RoleID:   roleID,
		IsActive: active,
	})
}

func (m *mockRoleRepository) grant(roleID int64, perms ...auth.Permission) {
	m.permissions[roleID] = append(m.permissions[roleID], perms...)
}

func (m *mockRoleRepository) ActiveRoleAssignments(userID int64) ([]auth.RoleAssignment, error) {
	var active []auth.RoleAssignment
	for _, a := range m.assignments[userID] {
		if a.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

func (m *mockRoleRepository) RolePermissions(roleID int64) ([]auth.Permission, error) {
	return m.permissions[roleID], nil
}

func signTestToken(claims *auth.Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		userRepo *mockUserRepository
		roleRepo *mockRoleRepository
		tokenGen *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		userRepo = newMockUserRepository()
		roleRepo = newMockRoleRepository()
		tokenGen = auth.NewJWTTokenGenerator(testSecret, time.Hour, 24*time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(userRepo, roleRepo, tokenGen, 1800*time.Second, logger)

		hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		userRepo.addUser(&auth.User{
			ID:           1,
			Username:     "jdoe",
			Email:        "jdoe@example.com",
			PasswordHash: string(hash),
			Status:       auth.StatusActive,
		})
	})

	Describe("Authenticate", func() {
		It("should issue a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "secret123"})

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "wrong"})

			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("should reject an unknown username", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "ghost", Password: "secret123"})

			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("should reject an inactive user", func() {
			userRepo.users[1].Status = auth.StatusInactive

			_, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "secret123"})

			Expect(err).To(Equal(internal.ErrUserInactive))
		})

		It("should require both fields", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "jdoe"})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("password"))
		})
	})

	Describe("ValidateSession", func() {
		It("should accept a freshly issued access token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())

			user, err := service.ValidateSession(tokens.AccessToken)

			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(int64(1)))
		})

		It("should fail with MissingToken for an empty token", func() {
			_, err := service.ValidateSession("")

			Expect(err).To(Equal(internal.ErrMissingToken))
		})

		It("should fail with InvalidToken for garbage", func() {
			_, err := service.ValidateSession("not.a.token")

			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("should fail with InvalidToken for a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("another-secret-another-secret-12345", time.Hour, 24*time.Hour)
			token, err := otherGen.GenerateAccessToken(1, time.Now())
			Expect(err).NotTo(HaveOccurred())

			_, verr := service.ValidateSession(token)

			Expect(verr).To(Equal(internal.ErrInvalidToken))
		})

		It("should fail with TokenExpired past the hard expiry", func() {
			issued := time.Now().Add(-2 * time.Hour)
			token := signTestToken(&auth.Claims{
				UserID:       1,
				TokenType:    auth.TokenTypeAccess,
				LastActivity: issued.Unix(),
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(issued),
					ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
				},
			})

			_, err := service.ValidateSession(token)

			Expect(err).To(Equal(internal.ErrTokenExpired))
		})

		It("should fail with SessionExpired when idle past the timeout", func() {
			// Issued 40 minutes ago, no activity since: 2400s idle > 1800s.
			issued := time.Now().Add(-40 * time.Minute)
			token := signTestToken(&auth.Claims{
				UserID:    1,
				TokenType: auth.TokenTypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(issued),
					ExpiresAt: jwt.NewNumericDate(issued.Add(8 * time.Hour)),
				},
			})

			_, err := service.ValidateSession(token)

			Expect(err).To(Equal(internal.ErrSessionExpired))
		})

		It("should accept the same stale token with recent activity", func() {
			issued := time.Now().Add(-40 * time.Minute)
			token := signTestToken(&auth.Claims{
				UserID:       1,
				TokenType:    auth.TokenTypeAccess,
				LastActivity: time.Now().Add(-5 * time.Minute).Unix(),
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(issued),
					ExpiresAt: jwt.NewNumericDate(issued.Add(8 * time.Hour)),
				},
			})

			user, err := service.ValidateSession(token)

			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(int64(1)))
		})

		It("should reject a refresh token presented as a session token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())

			_, verr := service.ValidateSession(tokens.RefreshToken)

			Expect(verr).To(Equal(internal.ErrInvalidToken))
		})

		It("should fail with UserNotFound when the identity is gone", func() {
			token, err := tokenGen.GenerateAccessToken(999, time.Now())
			Expect(err).NotTo(HaveOccurred())

			_, verr := service.ValidateSession(token)

			Expect(verr).To(Equal(internal.ErrUserNotFound))
		})

		It("should fail with UserInactive for a deactivated identity", func() {
			userRepo.users[1].Status = auth.StatusInactive
			token, err := tokenGen.GenerateAccessToken(1, time.Now())
			Expect(err).NotTo(HaveOccurred())

			_, verr := service.ValidateSession(token)

			Expect(verr).To(Equal(internal.ErrUserInactive))
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue a new pair with fresh activity", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)

			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())

			_, verr := service.ValidateSession(refreshed.AccessToken)
			Expect(verr).NotTo(HaveOccurred())
		})

		It("should reject an access token used for refresh", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())

			_, rerr := service.RefreshTokens(tokens.AccessToken)

			Expect(rerr).To(Equal(internal.ErrInvalidToken))
		})

		It("should reject refresh for an inactive user", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Username: "jdoe", Password: "secret123"})
			Expect(err).NotTo(HaveOccurred())
			userRepo.users[1].Status = auth.StatusInactive

			_, rerr := service.RefreshTokens(tokens.RefreshToken)

			Expect(rerr).To(Equal(internal.ErrUserInactive))
		})
	})
})
