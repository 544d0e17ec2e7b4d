package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/service"
)

// UserHandler exposes user administration. Every operation is manager-only;
// the service layer enforces that, the handler just shapes HTTP.
type UserHandler struct {
	userSvc *service.UserService
	log     *zap.Logger
}

func NewUserHandler(userSvc *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userSvc: userSvc, log: log}
}

type createUserRequest struct {
	Username string      `json:"username" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     domain.Role `json:"role" binding:"required"`
	IsActive *bool       `json:"is_active"`
}

type updateUserRequest struct {
	Username *string      `json:"username"`
	Email    *string      `json:"email"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
	Password *string      `json:"password"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userSvc.ListUsers(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondOK(c, out)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.userSvc.GetUser(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, toUserResponse(user))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &service.CreateUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	}

	user, err := h.userSvc.CreateUser(c.Request.Context(), identityFrom(c), cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, toUserResponse(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &service.UpdateUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	}

	user, err := h.userSvc.UpdateUser(c.Request.Context(), identityFrom(c), id, cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, toUserResponse(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.userSvc.DeleteUser(c.Request.Context(), identityFrom(c), id, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": id.String()})
}
