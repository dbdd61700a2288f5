package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/prasetyadi/hr-platform/internal"
)

// Service validates sessions and issues tokens. Session validation is
// read-only; lastActivity only advances when a token is (re)issued.
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	resolver       *Resolver
	sessionTimeout time.Duration
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, roleRepo RoleRepository, tokenGen TokenGenerator, sessionTimeout time.Duration, logger *slog.Logger) *Service {
	if sessionTimeout <= 0 {
		sessionTimeout = internal.DefaultSessionTimeout
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		resolver:       NewResolver(roleRepo),
		sessionTimeout: sessionTimeout,
		bcryptCost:     bcrypt.DefaultCost,
		logger:         logger,
	}
}

// Resolver exposes the permission resolver for guard middleware wiring.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Authenticate verifies credentials and issues a fresh token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	userID, storedHash, err := s.userRepo.GetCredentialsByUsername(dto.Username)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !user.IsActiveUser() {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(userID)
}

// RefreshTokens validates a refresh token and issues a new pair with a fresh
// lastActivity claim; this is the only way an idle session is extended.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrUserNotFound
	}
	if !user.IsActiveUser() {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(claims.UserID)
}

func (s *Service) issueTokens(userID int64) (AuthTokens, error) {
	now := time.Now()

	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, now)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, now)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateSession verifies the bearer token's signature and expiry, enforces
// the inactivity timeout on top of the token's own lifetime, then resolves the
// identity against the credential store.
func (s *Service) ValidateSession(tokenString string) (*User, error) {
	if tokenString == "" {
		return nil, internal.ErrMissingToken
	}

	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, internal.ErrInvalidToken
	}

	// Inactivity is measured from the later of lastActivity and iat, so a
	// token refreshed recently stays valid even if issued long ago.
	lastActivity := claims.LastActivity
	if claims.IssuedAt != nil && claims.IssuedAt.Unix() > lastActivity {
		lastActivity = claims.IssuedAt.Unix()
	}
	inactivity := time.Now().Unix() - lastActivity
	if inactivity > int64(s.sessionTimeout.Seconds()) {
		return nil, internal.ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	if !user.IsActiveUser() {
		return nil, internal.ErrUserInactive
	}

	return user, nil
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// JWTTokenGenerator signs session tokens with the server-held HS256 secret.
type JWTTokenGenerator struct {
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:          []byte(secret),
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, lastActivity time.Time) (string, error) {
	return j.sign(userID, TokenTypeAccess, j.AccessTokenTTL, lastActivity)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, lastActivity time.Time) (string, error) {
	return j.sign(userID, TokenTypeRefresh, j.RefreshTokenTTL, lastActivity)
}

func (j *JWTTokenGenerator) sign(userID int64, tokenType string, ttl time.Duration, lastActivity time.Time) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID,
		TokenType:    tokenType,
		LastActivity: lastActivity.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken verifies signature and hard expiry; the inactivity timeout is
// the service's concern, not the generator's.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
