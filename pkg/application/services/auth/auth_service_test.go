package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"github.com/vsinha/kitchen/pkg/infrastructure/repositories/memory"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func newTestService(t *testing.T) (*Service, entities.Principal) {
	t.Helper()
	service := NewService(memory.NewStore().Users(), secret, 0, zap.NewNop()).WithCost(bcrypt.MinCost)

	created, err := service.Bootstrap(context.Background(), "root", "root@kitchen.test", "rootpassword")
	if err != nil || !created {
		t.Fatalf("Expected bootstrap admin to be created: %v", err)
	}
	admin, err := service.users.GetUserByUsername(context.Background(), "root")
	if err != nil {
		t.Fatalf("Failed to load admin: %v", err)
	}
	return service, entities.Principal{UserID: admin.ID, Username: admin.Username, Role: admin.Role}
}

func TestBootstrap_OnlyOnce(t *testing.T) {
	service, _ := newTestService(t)
	created, err := service.Bootstrap(context.Background(), "other", "other@kitchen.test", "otherpassword")
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if created {
		t.Error("Expected no second bootstrap admin")
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	service, admin := newTestService(t)

	chef, err := service.CreateUser(ctx, admin, UserInput{
		Username: "cook", Email: "Cook@Kitchen.test", Password: "chefpassword", Role: entities.RoleChef,
	})
	if err != nil {
		t.Fatalf("Failed to create chef: %v", err)
	}

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
	}{
		{"by username", "cook", "chefpassword", nil},
		{"by email", "cook@kitchen.test", "chefpassword", nil},
		{"wrong password", "cook", "nope-nope", entities.ErrUnauthenticated},
		{"unknown user", "ghost", "chefpassword", entities.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := service.Login(ctx, tt.login, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected login to succeed: %v", err)
			}
			if user.ID != chef.ID {
				t.Errorf("Expected user %d, got %d", chef.ID, user.ID)
			}

			principal, err := service.Authenticate(ctx, token)
			if err != nil {
				t.Fatalf("Expected token to authenticate: %v", err)
			}
			if principal.UserID != chef.ID || principal.Role != entities.RoleChef {
				t.Errorf("Expected chef principal, got %+v", principal)
			}
		})
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	ctx := context.Background()
	service, admin := newTestService(t)
	user, _ := service.users.GetUser(ctx, admin.UserID)

	expired, err := service.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).IssueToken(user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	service.WithClock(time.Now)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatalf("Failed to sign foreign token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong signature", foreign},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal, err := service.Authenticate(ctx, tt.token)
			if !errors.Is(err, entities.ErrUnauthenticated) {
				t.Errorf("Expected unauthenticated, got %v", err)
			}
			if !principal.IsGuest() {
				t.Errorf("Expected guest principal on failure, got %+v", principal)
			}
		})
	}
}

func TestInactiveUserCannotAuthenticate(t *testing.T) {
	ctx := context.Background()
	service, admin := newTestService(t)

	chef, err := service.CreateUser(ctx, admin, UserInput{Username: "cook", Email: "cook@kitchen.test", Password: "chefpassword", Role: entities.RoleChef})
	if err != nil {
		t.Fatalf("Failed to create chef: %v", err)
	}
	token, _, err := service.Login(ctx, "cook", "chefpassword")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	inactive := false
	if _, err := service.UpdateUser(ctx, admin, chef.ID, UserUpdate{Active: &inactive}); err != nil {
		t.Fatalf("Failed to deactivate chef: %v", err)
	}

	if _, err := service.Authenticate(ctx, token); !errors.Is(err, entities.ErrUnauthenticated) {
		t.Errorf("Expected existing token of an inactive user to be rejected, got %v", err)
	}
	if _, _, err := service.Login(ctx, "cook", "chefpassword"); !errors.Is(err, entities.ErrUnauthenticated) {
		t.Errorf("Expected inactive login to be rejected, got %v", err)
	}
}

func TestUserAdministration(t *testing.T) {
	ctx := context.Background()
	service, admin := newTestService(t)

	manager, err := service.CreateUser(ctx, admin, UserInput{Username: "boss", Email: "boss@kitchen.test", Password: "managerpass", Role: entities.RoleManager})
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	managerPrincipal := entities.Principal{UserID: manager.ID, Role: entities.RoleManager}

	if _, err := service.CreateUser(ctx, admin, UserInput{Username: "boss", Email: "x@kitchen.test", Password: "password1", Role: entities.RoleChef}); !errors.Is(err, entities.ErrConflict) {
		t.Errorf("Expected duplicate username to conflict, got %v", err)
	}
	if _, err := service.CreateUser(ctx, admin, UserInput{Username: "short", Email: "s@kitchen.test", Password: "abc", Role: entities.RoleChef}); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("Expected short password to be rejected, got %v", err)
	}
	if _, err := service.CreateUser(ctx, managerPrincipal, UserInput{Username: "x", Email: "x@kitchen.test", Password: "password1", Role: entities.RoleChef}); !errors.Is(err, entities.ErrForbidden) {
		t.Errorf("Expected manager to be forbidden from creating users, got %v", err)
	}

	if _, err := service.ListUsers(ctx, managerPrincipal, repositories.Page{}); !errors.Is(err, entities.ErrForbidden) {
		t.Errorf("Expected manager to be forbidden from listing users, got %v", err)
	}
	users, err := service.ListUsers(ctx, admin, repositories.Page{})
	if err != nil || len(users) != 2 {
		t.Errorf("Expected admin to list 2 users, got %d (%v)", len(users), err)
	}

	if _, err := service.GetUser(ctx, managerPrincipal, manager.ID); err != nil {
		t.Errorf("Expected users to read themselves, got %v", err)
	}
	if _, err := service.GetUser(ctx, managerPrincipal, admin.UserID); !errors.Is(err, entities.ErrForbidden) {
		t.Errorf("Expected manager to be forbidden from reading admin, got %v", err)
	}

	promoted := entities.RoleAdmin
	updated, err := service.UpdateUser(ctx, admin, manager.ID, UserUpdate{Role: &promoted})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Role != entities.RoleAdmin {
		t.Errorf("Expected admin role, got %s", updated.Role)
	}
}
