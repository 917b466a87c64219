package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agricoventas/platform/internal/database"
	"github.com/agricoventas/platform/internal/entity"
	svc "github.com/agricoventas/platform/internal/service/user"
)

var repoTracer = otel.Tracer("github.com/agricoventas/platform/repository/user")

// Repository encapsulates read/write access for accounts.
var _ svc.Store = (*Repository)(nil)

type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Insert creates an account. The email uniqueness check runs on the writer
// so it observes the latest committed state; the unique index remains the
// final arbiter under races.
func (r *Repository) Insert(ctx context.Context, user *entity.User) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.Insert")
	defer span.End()

	taken, err := r.writer.NewSelect().Model((*entity.User)(nil)).
		Where("u.email = ?", user.Email).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return err
	}
	if taken {
		return svc.ErrDuplicateEmail
	}

	if _, err := r.writer.NewInsert().Model(user).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByID", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	account := new(entity.User)
	err := r.reader.NewSelect().Model(account).
		Where("u.id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrUserNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return account, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	account := new(entity.User)
	err := r.reader.NewSelect().Model(account).
		Where("u.email = ?", email).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, svc.ErrUserNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return account, nil
}

func (r *Repository) Update(ctx context.Context, user *entity.User) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.Update", trace.WithAttributes(attribute.Int64("user.id", user.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return svc.ErrUserNotFound
	}
	return nil
}

// List returns a page of accounts, newest first. An empty role lists all.
func (r *Repository) List(ctx context.Context, role string, offset, limit int) ([]entity.User, int, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.List")
	defer span.End()

	var users []entity.User
	q := r.reader.NewSelect().Model(&users)
	if role != "" {
		q = q.Where("u.role = ?", role)
	}
	total, err := q.Order("u.created_at DESC").Offset(offset).Limit(limit).ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return users, total, nil
}
