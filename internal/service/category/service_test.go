package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/dto"
	"github.com/agricoventas/platform/internal/entity"
	"github.com/agricoventas/platform/pkg/errorbank"
)

type memStore struct {
	categories map[int64]*entity.Category
	inUse      map[int64]bool
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[int64]*entity.Category{},
		inUse:      map[int64]bool{},
	}
}

func (s *memStore) Insert(ctx context.Context, category *entity.Category) error {
	s.nextID++
	category.ID = s.nextID
	cp := *category
	s.categories[category.ID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, categoryID int64) (*entity.Category, error) {
	c, ok := s.categories[categoryID]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	for _, c := range s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (s *memStore) List(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memStore) Update(ctx context.Context, category *entity.Category) error {
	if _, ok := s.categories[category.ID]; !ok {
		return ErrCategoryNotFound
	}
	cp := *category
	s.categories[category.ID] = &cp
	return nil
}

func (s *memStore) Delete(ctx context.Context, categoryID int64) error {
	if _, ok := s.categories[categoryID]; !ok {
		return ErrCategoryNotFound
	}
	if s.inUse[categoryID] {
		return ErrCategoryInUse
	}
	delete(s.categories, categoryID)
	return nil
}

func (s *memStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.GetBySlug(ctx, slug)
	return err == nil, nil
}

func requireKind(t *testing.T, err error, kind errorbank.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, errorbank.From(err).Kind())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Frutas":               "frutas",
		"Lácteos y Huevos":     "lácteos-y-huevos",
		"  Café --- de Origen": "café-de-origen",
		"100% Orgánico!":       "100-orgánico",
		"---":                  "",
	}
	for name, want := range cases {
		require.Equal(t, want, Slugify(name), "input %q", name)
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), zap.NewNop())

	first, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Frutas Frescas"})
	require.NoError(t, err)
	require.Equal(t, "frutas-frescas", first.Slug)

	// Same name again: the slug picks up a numeric suffix.
	second, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Frutas Frescas"})
	require.NoError(t, err)
	require.Equal(t, "frutas-frescas-2", second.Slug)

	third, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Frutas Frescas"})
	require.NoError(t, err)
	require.Equal(t, "frutas-frescas-3", third.Slug)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore(), zap.NewNop())

	category, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Frutas"})
	require.NoError(t, err)

	t.Run("rename regenerates the slug", func(t *testing.T) {
		name := "Frutas Tropicales"
		updated, err := svc.Update(ctx, category.ID, dto.UpdateCategoryRequest{Name: &name})
		require.NoError(t, err)
		require.Equal(t, "frutas-tropicales", updated.Slug)
	})

	t.Run("description-only edits keep the slug", func(t *testing.T) {
		description := "Mango, papaya, maracuyá"
		updated, err := svc.Update(ctx, category.ID, dto.UpdateCategoryRequest{Description: &description})
		require.NoError(t, err)
		require.Equal(t, "frutas-tropicales", updated.Slug)
		require.Equal(t, description, updated.Description)
	})

	t.Run("unknown category is not found", func(t *testing.T) {
		name := "Nada"
		_, err := svc.Update(ctx, 404, dto.UpdateCategoryRequest{Name: &name})
		requireKind(t, err, errorbank.KindNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc := NewService(st, zap.NewNop())

	category, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Granos"})
	require.NoError(t, err)

	t.Run("in-use category conflicts", func(t *testing.T) {
		st.inUse[category.ID] = true
		err := svc.Delete(ctx, category.ID)
		requireKind(t, err, errorbank.KindConflict)
	})

	t.Run("empty category deletes", func(t *testing.T) {
		st.inUse[category.ID] = false
		require.NoError(t, svc.Delete(ctx, category.ID))
		err := svc.Delete(ctx, category.ID)
		requireKind(t, err, errorbank.KindNotFound)
	})
}
