package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/webshop/middleware"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/services"
	"github.com/upb/webshop/services/auth"
	"github.com/upb/webshop/services/users"
	"github.com/upb/webshop/utils"
	"go.uber.org/zap"
)

// AuthService issues and renews token pairs
type AuthService interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.TokenPair, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	RotateRefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

// UserService manages user accounts
type UserService interface {
	Register(ctx context.Context, req users.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateContact(ctx context.Context, id uuid.UUID, req users.UpdateContactRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserHandler handles account and token endpoints
type UserHandler struct {
	users  UserService
	auth   AuthService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, auth AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		auth:   auth,
		logger: logger,
	}
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var creds auth.Credentials
	if !decodeAndValidate(w, r, &creds, h.logger) {
		return
	}

	pair, err := h.auth.Login(ctx, creds)
	if err != nil {
		// an unknown e-mail is reported like a wrong password
		if errors.Is(err, services.ErrUserNotFound) {
			err = services.ErrInvalidCredentials
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, pair)
}

// RefreshAccessToken handles POST /api/v1/users/token
func (h *UserHandler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	h.renew(w, r, h.auth.RefreshAccessToken)
}

// RotateRefreshToken handles POST /api/v1/users/refresh
func (h *UserHandler) RotateRefreshToken(w http.ResponseWriter, r *http.Request) {
	h.renew(w, r, h.auth.RotateRefreshToken)
}

func (h *UserHandler) renew(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*auth.TokenPair, error)) {
	var req RefreshRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	pair, err := fn(r.Context(), req.RefreshToken)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, pair)
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req users.CreateUserRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	user, err := h.users.Register(ctx, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user registered",
		zap.String("request_id", requestID),
		zap.String("user_id", user.ID.String()))

	_ = utils.WriteCreated(w, user)
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, list)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetBySubject(r.Context(), p.Subject)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// UpdateContact handles PUT /api/v1/users/{id}
func (h *UserHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req users.UpdateContactRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	user, err := h.users.UpdateContact(r.Context(), id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(ctx, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user deleted",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("user_id", id.String()))

	utils.WriteNoContent(w)
}
