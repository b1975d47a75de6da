// Package auth authenticates staff users and manages their accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is the lifetime of an access token
const DefaultTokenTTL = 30 * time.Minute

const minPasswordLength = 8

var errBadCredentials = fmt.Errorf("%w: incorrect username or password", entities.ErrUnauthenticated)

// Claims is the access token payload
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserInput creates a user
type UserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     entities.Role
}

// UserUpdate changes the non-nil fields of a user
type UserUpdate struct {
	Email    *string
	FullName *string
	Password *string
	Role     *entities.Role
	Active   *bool
}

// Service issues and verifies tokens and enforces user administration rules
type Service struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an auth service; a non-positive ttl uses DefaultTokenTTL
func NewService(users repositories.UserRepository, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		logger: logger,
		now:    time.Now,
	}
}

// WithCost sets the bcrypt cost of new password hashes
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// WithClock replaces the service clock
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login checks a username (or email) and password and returns a signed access token
func (s *Service) Login(ctx context.Context, login, password string) (string, *entities.User, error) {
	user, err := s.users.GetUserByUsername(ctx, login)
	if errors.Is(err, entities.ErrNotFound) && strings.Contains(login, "@") {
		user, err = s.users.GetUserByEmail(ctx, login)
	}
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return "", nil, errBadCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("login", login))
		return "", nil, errBadCredentials
	}
	if !user.Active {
		return "", nil, fmt.Errorf("%w: inactive user", entities.ErrUnauthenticated)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs an HS256 token carrying the user id and role
func (s *Service) IssueToken(user *entities.User) (string, error) {
	now := s.now()
	claims := Claims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies a token and resolves it to the current user. The role
// comes from the stored user, so demotions apply to existing tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (entities.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return entities.Guest(), fmt.Errorf("%w: could not validate credentials", entities.ErrUnauthenticated)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return entities.Guest(), fmt.Errorf("%w: malformed subject", entities.ErrUnauthenticated)
	}

	user, err := s.users.GetUser(ctx, entities.UserID(id))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return entities.Guest(), fmt.Errorf("%w: user not found", entities.ErrUnauthenticated)
		}
		return entities.Guest(), fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.Active {
		return entities.Guest(), fmt.Errorf("%w: inactive user", entities.ErrUnauthenticated)
	}

	return entities.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// Me returns the principal's user record
func (s *Service) Me(ctx context.Context, actor entities.Principal) (*entities.User, error) {
	return s.users.GetUser(ctx, actor.UserID)
}

// GetUser returns a user to themselves or to an admin
func (s *Service) GetUser(ctx context.Context, actor entities.Principal, id entities.UserID) (*entities.User, error) {
	if actor.UserID != id && !actor.Role.CanAdministerUsers() {
		return nil, forbidden()
	}
	return s.users.GetUser(ctx, id)
}

// ListUsers returns a page of users to an admin
func (s *Service) ListUsers(ctx context.Context, actor entities.Principal, page repositories.Page) ([]*entities.User, error) {
	if !actor.Role.CanAdministerUsers() {
		return nil, forbidden()
	}
	return s.users.ListUsers(ctx, page)
}

// CreateUser adds a user on behalf of an admin
func (s *Service) CreateUser(ctx context.Context, actor entities.Principal, input UserInput) (*entities.User, error) {
	if !actor.Role.CanAdministerUsers() {
		return nil, forbidden()
	}
	return s.create(ctx, input)
}

// UpdateUser changes a user on behalf of an admin
func (s *Service) UpdateUser(ctx context.Context, actor entities.Principal, id entities.UserID, update UserUpdate) (*entities.User, error) {
	if !actor.Role.CanAdministerUsers() {
		return nil, forbidden()
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	email, fullName, role := user.Email, user.FullName, user.Role
	if update.Email != nil {
		email = *update.Email
	}
	if update.FullName != nil {
		fullName = *update.FullName
	}
	if update.Role != nil {
		role = *update.Role
	}
	validated, err := entities.NewUser(user.Username, email, fullName, role)
	if err != nil {
		return nil, err
	}
	user.Email, user.FullName, user.Role = validated.Email, validated.FullName, validated.Role

	if update.Active != nil {
		user.Active = *update.Active
	}
	if update.Password != nil {
		hash, err := s.hash(*update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user updated", zap.Int64("user_id", int64(user.ID)), zap.Int64("by", int64(actor.UserID)))
	return user, nil
}

// Bootstrap creates the first admin when no users exist. It reports whether
// a user was created.
func (s *Service) Bootstrap(ctx context.Context, username, email, password string) (bool, error) {
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	admin, err := s.create(ctx, UserInput{
		Username: username,
		Email:    email,
		Password: password,
		FullName: "Administrator",
		Role:     entities.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin created", zap.String("username", admin.Username))
	return true, nil
}

func (s *Service) create(ctx context.Context, input UserInput) (*entities.User, error) {
	user, err := entities.NewUser(input.Username, input.Email, input.FullName, input.Role)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", entities.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func forbidden() error {
	return fmt.Errorf("%w: the user doesn't have enough privileges", entities.ErrForbidden)
}
