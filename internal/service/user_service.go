package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain/claim"
)

type CreateUserCommand struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
	IsActive *bool
}

type UpdateUserCommand struct {
	Username *string
	Email    *string
	Role     *domain.Role
	IsActive *bool
	// Password is only changed when a non-blank value is supplied.
	Password *string
}

// UserService covers manager-only user administration.
type UserService struct {
	repo     UserRepository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewUserService(repo UserRepository, auditSvc *AuditService, log *zap.Logger) *UserService {
	return &UserService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *UserService) ListUsers(ctx context.Context, ident domain.Identity) ([]*domain.User, error) {
	if !ident.Role.Can(domain.OpUserManage) {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, ident domain.Identity, id uuid.UUID) (*domain.User, error) {
	if !ident.Role.Can(domain.OpUserManage) {
		return nil, ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, ident domain.Identity, cmd *CreateUserCommand, ip string) (*domain.User, error) {
	if !ident.Role.Can(domain.OpUserManage) {
		return nil, ErrForbidden
	}
	if err := validateUserCommand(cmd); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Username:     strings.TrimSpace(cmd.Username),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		PasswordHash: string(hash),
		Role:         cmd.Role,
		IsActive:     true,
	}
	if cmd.IsActive != nil {
		u.IsActive = *cmd.IsActive
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionCreate),
		ResourceType: "user",
		ResourceID:   u.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
		zap.String("created_by", ident.UserID.String()),
	)

	return u, nil
}

func (s *UserService) UpdateUser(ctx context.Context, ident domain.Identity, id uuid.UUID, cmd *UpdateUserCommand, ip string) (*domain.User, error) {
	if !ident.Role.Can(domain.OpUserManage) {
		return nil, ErrForbidden
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Username != nil && strings.TrimSpace(*cmd.Username) != "" {
		u.Username = strings.TrimSpace(*cmd.Username)
	}
	if cmd.Email != nil && strings.TrimSpace(*cmd.Email) != "" {
		u.Email = strings.ToLower(strings.TrimSpace(*cmd.Email))
	}
	if cmd.Role != nil {
		if !cmd.Role.IsValid() {
			return nil, &claim.ValidationError{Fields: map[string]string{"role": "must be data_entry or manager"}}
		}
		u.Role = *cmd.Role
	}
	if cmd.IsActive != nil {
		u.IsActive = *cmd.IsActive
	}
	if cmd.Password != nil && strings.TrimSpace(*cmd.Password) != "" {
		if err := validatePasswordStrength(*cmd.Password); err != nil {
			return nil, &claim.ValidationError{Fields: map[string]string{"password": err.Error()}}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*cmd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionUpdate),
		ResourceType: "user",
		ResourceID:   u.ID.String(),
		IPAddress:    ip,
	})

	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, ident domain.Identity, id uuid.UUID, ip string) error {
	if !ident.Role.Can(domain.OpUserManage) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       ident.UserID,
		UserRole:     string(ident.Role),
		Action:       string(domain.ActionDelete),
		ResourceType: "user",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func validateUserCommand(cmd *CreateUserCommand) error {
	fields := make(map[string]string)
	if strings.TrimSpace(cmd.Username) == "" {
		fields["username"] = "this field is required"
	}
	if strings.TrimSpace(cmd.Email) == "" {
		fields["email"] = "this field is required"
	}
	if !cmd.Role.IsValid() {
		fields["role"] = "must be data_entry or manager"
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return &claim.ValidationError{Fields: fields}
	}
	return nil
}

func validatePasswordStrength(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("password must be at least 12 characters")
	}
	return nil
}
