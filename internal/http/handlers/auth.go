package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/brightkube/authhub/internal/config"
	"github.com/brightkube/authhub/internal/http/middlewares"
	"github.com/brightkube/authhub/internal/observability"
	"github.com/brightkube/authhub/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthWorkflow is the slice of the service the handler consumes.
type AuthWorkflow interface {
	Register(ctx context.Context, req service.RegisterRequest) (service.RegisterResponse, error)
	Login(ctx context.Context, req service.LoginRequest) (service.LoginResponse, error)
}

type AuthHandler struct {
	svc  AuthWorkflow
	prom *observability.Prom
}

func NewAuthHandler(svc AuthWorkflow, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		svc:  svc,
		prom: prom,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	resp, err := h.svc.Register(cctx, service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			h.countRegistration("email_taken")
			RespondError(ctx, http.StatusBadRequest, "email_taken", err.Error(), nil)
			return
		}

		h.countRegistration("error")
		slog.Default().ErrorContext(ctx.Request.Context(), "register failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.countRegistration("success")
	ctx.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	resp, err := h.svc.Login(cctx, service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.countLogin("invalid_credentials")
			RespondUnAuthorized(ctx, "invalid_credentials", err.Error())
			return
		}

		h.countLogin("error")
		slog.Default().ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	h.countLogin("success")
	ctx.JSON(http.StatusOK, resp)
}

// Me echoes the identity claims of the presented bearer token.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, _ := middlewares.UserIDFromContext(ctx)
	email, _ := middlewares.EmailFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"id":    id,
		"email": email,
		"role":  role,
	})
}

func (h *AuthHandler) countRegistration(result string) {
	if h.prom != nil {
		h.prom.Registrations.WithLabelValues(result).Inc()
	}
}

func (h *AuthHandler) countLogin(result string) {
	if h.prom != nil {
		h.prom.Logins.WithLabelValues(result).Inc()
	}
}
