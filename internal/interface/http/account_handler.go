package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	accountapp "github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/pkg/apperror"
	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/response"
	"github.com/oksasatya/account-service/pkg/validation"
)

// AccountService is the application surface the handler depends on.
type AccountService interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	CreateUser(ctx context.Context, in accountapp.CreateUserInput) (*accountapp.CreateUserResult, error)
	UpdateUser(ctx context.Context, in accountapp.UpdateUserInput) (*accountapp.UserIDResult, error)
	ChangePassword(ctx context.Context, in accountapp.ChangePasswordInput) (*accountapp.ChangePasswordResult, error)
	DeleteUser(ctx context.Context, id string) (*accountapp.UserIDResult, error)
	SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error)
	ExportUsers(ctx context.Context) (*accountapp.ExportResult, error)
}

type AccountHandler struct {
	Svc    AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Name            string `json:"name" binding:"required,personname"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

type updateUserRequest struct {
	Name  string `json:"name" binding:"required,personname"`
	Email string `json:"email" binding:"required,email"`
}

type changePasswordRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"required,email"`
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// ListUsers GET /api/users
func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", gin.H{"count": len(users)})
}

// GetUser GET /api/users/:id
func (h *AccountHandler) GetUser(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// CreateUser POST /api/users
func (h *AccountHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.CreateUser(c.Request.Context(), accountapp.CreateUserInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "user created", nil)
}

// UpdateUser PUT /api/users/:id
func (h *AccountHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.UpdateUser(c.Request.Context(), accountapp.UpdateUserInput{
		ID:    c.Param("id"),
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "user updated", nil)
}

// ChangePassword PUT /api/users/:id/password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.ChangePassword(c.Request.Context(), accountapp.ChangePasswordInput{
		ID:              c.Param("id"),
		Name:            req.Name,
		Email:           req.Email,
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "password changed", nil)
}

// DeleteUser DELETE /api/users/:id
func (h *AccountHandler) DeleteUser(c *gin.Context) {
	res, err := h.Svc.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "user deleted", nil)
}

// Search GET /api/users/search?q=&size=
func (h *AccountHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "search results", gin.H{"count": len(users)})
}

// Export POST /api/users/export
func (h *AccountHandler) Export(c *gin.Context) {
	res, err := h.Svc.ExportUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "users exported", nil)
}

// fail maps typed failures to their status; anything else is logged and hidden behind a 500.
func (h *AccountHandler) fail(c *gin.Context, err error) {
	if ae, ok := apperror.As(err); ok {
		response.Error[any](c, apperror.StatusOf(ae), ae.Message, gin.H{"code": ae.Code()})
		return
	}
	if h.Logger != nil {
		helpers.LogError(h.Logger, "account request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
	}
	response.Error[any](c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), nil)
}
