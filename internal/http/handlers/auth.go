package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vedang-raul/taskhub/internal/auth"
	"github.com/vedang-raul/taskhub/internal/config"
	"github.com/vedang-raul/taskhub/internal/domain/user"
	"github.com/vedang-raul/taskhub/internal/http/middlewares"
	"github.com/vedang-raul/taskhub/internal/ratelimit"
	"github.com/vedang-raul/taskhub/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Delete(ctx context.Context, id string) error
}

type AuthHandler struct {
	users     UserStore
	jwt       *auth.Manager
	limiter   *ratelimit.AuthLimiter
	adminCode string
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, limiter *ratelimit.AuthLimiter, adminCode string) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwt:       jwtManager,
		limiter:   limiter,
		adminCode: adminCode,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	if !h.allowAttempt(ctx) {
		return
	}

	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	// Role is fixed at creation. The admin code is a shared bootstrap secret:
	// an exact match self-elevates, anything else (including empty) stays a
	// regular user. An empty configured code disables elevation.
	role := user.RoleUser

	if h.adminCode != "" && req.AdminCode == h.adminCode {
		role = user.RoleAdmin
	}

	u, err := h.users.Create(cctx, req.Username, req.Email, hash, role)

	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyUsed) {
			RespondBadRequest(ctx, "email_taken", "Email is already registered.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":      u.ID,
		"message": "User created successfully",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	if !h.allowAttempt(ctx) {
		return
	}

	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		// identical response to the unknown-email case above
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	accessToken, err := h.jwt.IssueAccessToken(foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"tokenType":   "bearer",
	})
}

// ListUsers is admin-only (enforced on the route). Password hashes never
// leave the process: the domain struct excludes them from JSON.
func (h *AuthHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *AuthHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if !isWellFormedID(id) {
		RespondBadRequest(ctx, "invalid_id", "user id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.users.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// allowAttempt consults the shared credential throttle. A down Redis fails
// open; only an exhausted budget rejects.
func (h *AuthHandler) allowAttempt(ctx *gin.Context) bool {
	err := h.limiter.Enforce(ctx.Request.Context(), middlewares.KeyByIP(ctx))

	if errors.Is(err, ratelimit.ErrLimited) {
		RespondError(ctx, http.StatusTooManyRequests, "rate_limited", "Too many attempts. Please try again shortly.", nil)
		return false
	}

	return true
}
