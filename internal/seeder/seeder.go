package seeder

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/auth"
	"github.com/agricoventas/platform/internal/database"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/internal/service/category"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Run seeds the full development dataset: an admin account, a fully
// certified demo seller, categories, and a few listings.
func (s *Seeder) Run(ctx context.Context) error {
	adminID, err := s.user(ctx, "admin@agricoventas.dev", "Agricoventas Admin", entity.RoleAdmin)
	if err != nil {
		return err
	}
	sellerID, err := s.user(ctx, "seller@agricoventas.dev", "Finca La Esperanza", entity.RoleSeller)
	if err != nil {
		return err
	}
	if _, err := s.user(ctx, "buyer@agricoventas.dev", "Comprador Demo", entity.RoleBuyer); err != nil {
		return err
	}

	if err := s.certifications(ctx, sellerID, adminID); err != nil {
		return err
	}

	categoryID, err := s.categories(ctx)
	if err != nil {
		return err
	}

	if err := s.products(ctx, sellerID, categoryID); err != nil {
		return err
	}

	s.logger.Info("seed data applied")
	return nil
}

func (s *Seeder) user(ctx context.Context, email, fullName, role string) (int64, error) {
	existing := new(entity.User)
	err := s.db.NewSelect().Model(existing).Where("u.email = ?", email).Scan(ctx)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	// Development-only credential; rotate before exposing any environment.
	hash, err := auth.HashPassword("agricoventas123")
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	account := &entity.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FullName:     fullName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.db.NewInsert().Model(account).Exec(ctx); err != nil {
		return 0, err
	}
	return account.ID, nil
}

// certifications grants the demo seller the full verified set so product
// seeding passes the selling gate.
func (s *Seeder) certifications(ctx context.Context, sellerID, verifierID int64) error {
	now := time.Now().UTC()
	for _, code := range entity.RequiredCertificationTypes {
		exists, err := s.db.NewSelect().Model((*entity.Certification)(nil)).
			Where("cert.user_id = ?", sellerID).
			Where("cert.type_code = ?", code).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		cert := &entity.Certification{
			UserID:      sellerID,
			TypeCode:    code,
			Name:        code + " (demo)",
			Status:      entity.CertStatusVerified,
			DocumentURL: "https://example.com/docs/" + code,
			VerifierID:  verifierID,
			VerifiedAt:  now,
			UploadedAt:  now,
			UpdatedAt:   now,
		}
		if _, err := s.db.NewInsert().Model(cert).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) categories(ctx context.Context) (int64, error) {
	names := []string{"Frutas", "Verduras", "Granos", "Lácteos", "Café"}

	var firstID int64
	now := time.Now().UTC()
	for _, name := range names {
		slug := category.Slugify(name)

		existing := new(entity.Category)
		err := s.db.NewSelect().Model(existing).Where("c.slug = ?", slug).Scan(ctx)
		if err == nil {
			if firstID == 0 {
				firstID = existing.ID
			}
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		cat := &entity.Category{
			Name:      name,
			Slug:      slug,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.db.NewInsert().Model(cat).Exec(ctx); err != nil {
			return 0, err
		}
		if firstID == 0 {
			firstID = cat.ID
		}
	}
	return firstID, nil
}

func (s *Seeder) products(ctx context.Context, sellerID, categoryID int64) error {
	now := time.Now().UTC()
	samples := []entity.Product{
		{Name: "Aguacate Hass", BasePrice: 4500, StockQuantity: 200, UnitMeasure: "kg", OriginLocation: "Antioquia"},
		{Name: "Café de origen", BasePrice: 32000, StockQuantity: 80, UnitMeasure: "lb", OriginLocation: "Huila", IsFeatured: true},
		{Name: "Panela orgánica", BasePrice: 6000, StockQuantity: 150, UnitMeasure: "unidad", OriginLocation: "Cundinamarca"},
	}

	for _, sample := range samples {
		exists, err := s.db.NewSelect().Model((*entity.Product)(nil)).
			Where("p.seller_id = ?", sellerID).
			Where("p.name = ?", sample.Name).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		product := sample
		product.SellerID = sellerID
		product.CategoryID = categoryID
		product.IsActive = true
		product.CreatedAt = now
		product.UpdatedAt = now
		if _, err := s.db.NewInsert().Model(&product).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
