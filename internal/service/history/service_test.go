package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agricoventas/platform/internal/entity"
)

type memStore struct {
	rows      []entity.ProductHistory
	insertErr error
}

func (s *memStore) InsertAll(ctx context.Context, rows []entity.ProductHistory) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *memStore) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]entity.ProductHistory, int, error) {
	var out []entity.ProductHistory
	for _, row := range s.rows {
		if row.ProductID == productID {
			out = append(out, row)
		}
	}
	return out, len(out), nil
}

func (s *memStore) PriceRows(ctx context.Context, productID int64) ([]entity.ProductHistory, error) {
	var out []entity.ProductHistory
	for _, row := range s.rows {
		if row.ProductID == productID && row.Field == FieldBasePrice {
			out = append(out, row)
		}
	}
	return out, nil
}

func TestRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("one row per changed field", func(t *testing.T) {
		st := &memStore{}
		rec := NewRecorder(st, zap.NewNop())

		before := &entity.Product{ID: 5, Name: "Café de Huila", BasePrice: 100, StockQuantity: 10, IsActive: true}
		after := &entity.Product{ID: 5, Name: "Café de Huila", BasePrice: 120, StockQuantity: 8, IsActive: true}
		rec.Record(ctx, 2, entity.ChangeUpdate, before, after)

		require.Len(t, st.rows, 2)
		byField := map[string]entity.ProductHistory{}
		for _, row := range st.rows {
			byField[row.Field] = row
		}
		price := byField[FieldBasePrice]
		require.Equal(t, "100", price.OldValue)
		require.Equal(t, "120", price.NewValue)
		require.Equal(t, int64(5), price.ProductID)
		require.Equal(t, int64(2), price.UserID)
		stock := byField[FieldStockQuantity]
		require.Equal(t, "10", stock.OldValue)
		require.Equal(t, "8", stock.NewValue)
	})

	t.Run("identical snapshots write nothing", func(t *testing.T) {
		st := &memStore{}
		rec := NewRecorder(st, zap.NewNop())

		product := &entity.Product{ID: 5, Name: "Café de Huila", BasePrice: 100, IsActive: true}
		rec.Record(ctx, 2, entity.ChangeUpdate, product, product)
		require.Empty(t, st.rows)
	})

	t.Run("nil before records creation fields", func(t *testing.T) {
		st := &memStore{}
		rec := NewRecorder(st, zap.NewNop())

		after := &entity.Product{ID: 5, Name: "Café de Huila", BasePrice: 100, IsActive: true}
		rec.Record(ctx, 2, entity.ChangeCreate, nil, after)

		require.NotEmpty(t, st.rows)
		for _, row := range st.rows {
			require.Equal(t, entity.ChangeCreate, row.ChangeType)
			require.Equal(t, int64(5), row.ProductID)
		}
	})

	t.Run("store failures are swallowed", func(t *testing.T) {
		st := &memStore{insertErr: context.DeadlineExceeded}
		rec := NewRecorder(st, zap.NewNop())

		rec.Record(ctx, 2, entity.ChangeUpdate,
			&entity.Product{ID: 5, BasePrice: 100},
			&entity.Product{ID: 5, BasePrice: 200})
	})
}

func TestPriceTrend(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	st := &memStore{rows: []entity.ProductHistory{
		{ProductID: 5, Field: FieldBasePrice, NewValue: "100", CreatedAt: now.Add(-2 * time.Hour)},
		{ProductID: 5, Field: FieldBasePrice, NewValue: "not-a-number", CreatedAt: now.Add(-time.Hour)},
		{ProductID: 5, Field: FieldBasePrice, NewValue: "120", CreatedAt: now},
		{ProductID: 6, Field: FieldBasePrice, NewValue: "999", CreatedAt: now},
	}}
	rec := NewRecorder(st, zap.NewNop())

	trend, err := rec.PriceTrend(ctx, 5, 120)
	require.NoError(t, err)
	require.Equal(t, int64(5), trend.ProductID)
	require.Equal(t, 120.0, trend.CurrentPrice)

	// The unparseable row is skipped, not fatal.
	require.Len(t, trend.Points, 2)
	require.Equal(t, 100.0, trend.Points[0].Price)
	require.Equal(t, 120.0, trend.Points[1].Price)
}
