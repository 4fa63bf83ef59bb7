package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

const (
	defaultMinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// AuthOptions tunes AuthService.
type AuthOptions struct {
	MinPasswordLength int
}

// AuthService implements registration, login and the authorization guard.
type AuthService struct {
	users    ports.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
	notifier ports.Notifier
	clock    ports.Clock
	validate *validator.Validate
	opts     AuthOptions
	logger   zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenService,
	notifier ports.Notifier,
	clock ports.Clock,
	opts AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = defaultMinPasswordLength
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		clock:    clock,
		validate: validator.New(),
		opts:     opts,
		logger:   logger,
	}
}

// Register creates a USER account and returns it with a fresh access token.
func (s *AuthService) Register(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.Provision(ctx, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(domain.Event{
			Kind:       domain.EventUserRegistered,
			Subject:    user.Email,
			Recipient:  user.Email,
			OccurredAt: s.clock.Now().UTC(),
		})
	}

	token, err := s.tokens.Issue(user.Email, user.Role, 0)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Provision creates an account with an explicit role. Public registration
// always goes through Register; ADMIN accounts come from the seed command.
func (s *AuthService) Provision(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, domain.Invalid("email", "email must be a valid email address")
	}
	if len(password) < s.opts.MinPasswordLength {
		return nil, domain.Invalid("password", "password must be at least %d characters long", s.opts.MinPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return nil, domain.Invalid("password", "password must be at most %d bytes long", maxPasswordBytes)
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, domain.Invalid("role", "unknown role %q", role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, domain.ErrDuplicateIdentity
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, domain.Unavailable("create user", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

// Login checks the password and issues an access token. Unknown emails and
// wrong passwords fail identically with domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Unavailable("find user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, user.Role, 0)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Authenticate resolves credential to the calling identity and enforces the
// required role. The account is re-read on every call.
func (s *AuthService) Authenticate(ctx context.Context, credential string, required ports.RequiredRole) (*domain.Identity, error) {
	if required == ports.RequireNone {
		return nil, nil
	}

	raw, ok := bearerToken(credential)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.logger.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, domain.Unavailable("find user", err)
	}

	identity := &domain.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}
	if required == ports.RequireAdmin && !identity.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return identity, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// value. The scheme is case-insensitive.
func bearerToken(credential string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(credential), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
