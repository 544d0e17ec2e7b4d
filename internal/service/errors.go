package service

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrForbidden         = errors.New("forbidden: insufficient permissions")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this username or email already exists")
)

// AuditEntry is the service-facing shape of an audit record; the audit
// service maps it onto domain.AuditLog for async persistence.
type AuditEntry struct {
	UserID       uuid.UUID
	UserRole     string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
}
