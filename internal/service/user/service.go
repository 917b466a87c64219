package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/agricoventas/platform/service/user")

// Sentinel errors surfaced by Store implementations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the persistence boundary for accounts.
type Store interface {
	Insert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, userID int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, role string, offset, limit int) ([]entity.User, int, error)
}

// Service implements registration, login, and account management.
type Service struct {
	store  Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(store Store, tokens *auth.TokenManager, logger *zap.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

// Register creates a buyer or seller account and signs its first token.
// Admin accounts are never self-registered; they come from seeding.
func (s *Service) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Register", trace.WithAttributes(
		attribute.String("user.role", req.Role),
	))
	defer span.End()

	if req.Role == entity.RoleAdmin || !entity.ValidRole(req.Role) {
		return nil, errorbank.BadRequest("role must be SELLER or BUYER")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return nil, errorbank.Internal("failed to register", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	account := &entity.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
		FullName:     req.FullName,
		Phone:        req.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, errorbank.Conflict("email is already registered")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, errorbank.Internal("failed to register", errorbank.WithCause(err))
	}

	return s.issue(account)
}

// Login verifies credentials and signs a fresh token. Deactivated accounts
// cannot log in.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Login")
	defer span.End()

	account, err := s.store.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, errorbank.Unauthorized("invalid email or password")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to log in", errorbank.WithCause(err))
	}

	if !auth.VerifyPassword(account.PasswordHash, req.Password) {
		return nil, errorbank.Unauthorized("invalid email or password")
	}
	if !account.IsActive {
		return nil, errorbank.Forbidden("account is deactivated")
	}

	return s.issue(account)
}

// Get loads an account profile. Non-admins can only read themselves.
func (s *Service) Get(ctx context.Context, actor auth.Actor, userID int64) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Get", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	if userID != actor.UserID && !actor.Admin() {
		return nil, errorbank.Forbidden("cannot view another user's profile")
	}
	return s.load(ctx, span, userID)
}

// UpdateProfile applies partial edits to the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, req dto.UpdateProfileRequest) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(attribute.Int64("user.id", actor.UserID)))
	defer span.End()

	account, err := s.load(ctx, span, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		account.FullName = *req.FullName
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.ProfileImageURL != nil {
		account.ProfileImageURL = *req.ProfileImageURL
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, account); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update profile", errorbank.WithCause(err))
	}
	return account, nil
}

// ChangePassword rotates the caller's password after verifying the current
// one.
func (s *Service) ChangePassword(ctx context.Context, actor auth.Actor, req dto.ChangePasswordRequest) error {
	ctx, span := serviceTracer.Start(ctx, "UserService.ChangePassword", trace.WithAttributes(attribute.Int64("user.id", actor.UserID)))
	defer span.End()

	account, err := s.load(ctx, span, actor.UserID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(account.PasswordHash, req.CurrentPassword) {
		return errorbank.Unauthorized("current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return errorbank.Internal("failed to change password", errorbank.WithCause(err))
	}
	account.PasswordHash = hash
	account.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, account); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return errorbank.Internal("failed to change password", errorbank.WithCause(err))
	}
	return nil
}

// List pages through accounts, optionally filtered by role. Admin only.
func (s *Service) List(ctx context.Context, actor auth.Actor, role string, q dto.PageQuery) ([]entity.User, int, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.List")
	defer span.End()

	if !actor.Admin() {
		return nil, 0, errorbank.Forbidden("admin access required")
	}
	if role != "" && !entity.ValidRole(role) {
		return nil, 0, errorbank.BadRequest("unknown role filter", errorbank.WithDetail("role", role))
	}

	q.Normalize()
	users, total, err := s.store.List(ctx, role, q.Offset(), q.Limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, 0, errorbank.Internal("failed to list users", errorbank.WithCause(err))
	}
	return users, total, nil
}

// SetActive toggles an account's active flag. Admin only; admins cannot
// deactivate themselves.
func (s *Service) SetActive(ctx context.Context, actor auth.Actor, userID int64, active bool) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.SetActive", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("user.active", active),
	))
	defer span.End()

	if !actor.Admin() {
		return nil, errorbank.Forbidden("admin access required")
	}
	if userID == actor.UserID && !active {
		return nil, errorbank.Conflict("cannot deactivate your own account")
	}

	account, err := s.load(ctx, span, userID)
	if err != nil {
		return nil, err
	}
	if account.IsActive == active {
		return account, nil
	}

	account.IsActive = active
	account.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, account); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update user", errorbank.WithCause(err))
	}
	return account, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, userID int64) (*entity.User, error) {
	account, err := s.store.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, errorbank.NotFound("user not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return account, nil
}

func (s *Service) issue(account *entity.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(account.ID, account.Email, account.Role)
	if err != nil {
		s.logger.Error("token signing failed", zap.Int64("user_id", account.ID), zap.Error(err))
		return nil, errorbank.Internal("failed to sign token", errorbank.WithCause(err))
	}
	return &dto.AuthResponse{Token: token, User: Response(account)}, nil
}

// Response maps an account to its public view.
func Response(account *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:              account.ID,
		Email:           account.Email,
		Role:            account.Role,
		FullName:        account.FullName,
		Phone:           account.Phone,
		ProfileImageURL: account.ProfileImageURL,
		IsActive:        account.IsActive,
		CreatedAt:       account.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
