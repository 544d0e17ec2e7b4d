package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/auth"
)

type mockUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrUserAlreadyExists
		}
	}
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) Save(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// UpdateLoginAttempt mirrors the production lockout rule: five straight
// failures lock the account for fifteen minutes.
func (m *mockUserRepo) UpdateLoginAttempt(_ context.Context, id uuid.UUID, success bool) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if success {
		now := time.Now()
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		u.LastLoginAt = &now
		return nil
	}
	u.FailedLoginCount++
	if u.FailedLoginCount >= 5 {
		until := time.Now().Add(15 * time.Minute)
		u.LockedUntil = &until
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-0123456789-0123456789",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "claimtrack-test",
	})
}

func seedUser(t *testing.T, repo *mockUserRepo, username, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	u := &domain.User{
		Username:     username,
		Email:        username + "@hospital.test",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u
}

func newTestAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, testJWTManager(), newTestAuditService(), zap.NewNop())
}

func TestLogin_Success(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "clerk1", "correct horse battery", domain.RoleDataEntry)
	svc := newTestAuthService(repo)

	pair, user, err := svc.Login(context.Background(), "clerk1", "correct horse battery", "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected a full token pair")
	}
	if user.Username != "clerk1" {
		t.Errorf("unexpected user %q", user.Username)
	}

	ident, err := testJWTManager().ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("issued access token failed validation: %v", err)
	}
	if ident.Role != domain.RoleDataEntry {
		t.Errorf("expected data_entry role in token, got %s", ident.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	u := seedUser(t, repo, "clerk1", "correct horse battery", domain.RoleDataEntry)
	svc := newTestAuthService(repo)

	_, _, err := svc.Login(context.Background(), "clerk1", "wrong", "10.0.0.1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if u.FailedLoginCount != 1 {
		t.Errorf("expected failed count 1, got %d", u.FailedLoginCount)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newMockUserRepo())
	_, _, err := svc.Login(context.Background(), "nobody", "whatever", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	repo := newMockUserRepo()
	u := seedUser(t, repo, "gone", "correct horse battery", domain.RoleManager)
	u.IsActive = false
	svc := newTestAuthService(repo)

	_, _, err := svc.Login(context.Background(), "gone", "correct horse battery", "")
	if !errors.Is(err, ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "clerk1", "correct horse battery", domain.RoleDataEntry)
	svc := newTestAuthService(repo)

	for i := 0; i < 5; i++ {
		_, _, err := svc.Login(context.Background(), "clerk1", "wrong", "")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Even the right password is refused while locked.
	_, _, err := svc.Login(context.Background(), "clerk1", "correct horse battery", "")
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}
}

func TestRefreshToken_Roundtrip(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "mgr1", "correct horse battery", domain.RoleManager)
	svc := newTestAuthService(repo)

	pair, _, err := svc.Login(context.Background(), "mgr1", "correct horse battery", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	fresh, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if fresh.AccessToken == "" {
		t.Error("expected a new access token")
	}
}

func TestRefreshToken_AccessTokenRejected(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "mgr1", "correct horse battery", domain.RoleManager)
	svc := newTestAuthService(repo)

	pair, _, err := svc.Login(context.Background(), "mgr1", "correct horse battery", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.RefreshToken(context.Background(), pair.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("access token must not work as a refresh token, got %v", err)
	}
}

// -- User administration --

func newTestUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, newTestAuditService(), zap.NewNop())
}

func TestCreateUser_ManagerOnly(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(repo)

	cmd := &CreateUserCommand{
		Username: "clerk2",
		Email:    "Clerk2@Hospital.Test",
		Password: "a long enough password",
		Role:     domain.RoleDataEntry,
	}

	if _, err := svc.CreateUser(context.Background(), dataEntryIdent(), cmd, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for data-entry caller, got %v", err)
	}

	u, err := svc.CreateUser(context.Background(), managerIdent(), cmd, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "clerk2@hospital.test" {
		t.Errorf("expected lowercased email, got %q", u.Email)
	}
}

func TestCreateUser_WeakPasswordRejected(t *testing.T) {
	svc := newTestUserService(newMockUserRepo())

	_, err := svc.CreateUser(context.Background(), managerIdent(), &CreateUserCommand{
		Username: "clerk3",
		Email:    "clerk3@hospital.test",
		Password: "short",
		Role:     domain.RoleDataEntry,
	}, "")

	var verr *claim.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["password"]; !ok {
		t.Error("expected password field error")
	}
}

func TestUpdateUser_InvalidRoleRejected(t *testing.T) {
	repo := newMockUserRepo()
	u := seedUser(t, repo, "clerk1", "correct horse battery", domain.RoleDataEntry)
	svc := newTestUserService(repo)

	bad := domain.Role("superadmin")
	_, err := svc.UpdateUser(context.Background(), managerIdent(), u.ID, &UpdateUserCommand{Role: &bad}, "")
	var verr *claim.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestDeleteUser_ManagerOnly(t *testing.T) {
	repo := newMockUserRepo()
	u := seedUser(t, repo, "clerk1", "correct horse battery", domain.RoleDataEntry)
	svc := newTestUserService(repo)

	if err := svc.DeleteUser(context.Background(), dataEntryIdent(), u.ID, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteUser(context.Background(), managerIdent(), u.ID, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetUser(context.Background(), managerIdent(), u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
}
