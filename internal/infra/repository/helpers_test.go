package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pos/internal/domain/model"
	"pos/internal/infra/db"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteのファイルDB（外部キー有効）でgormの実装を動かす
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pos.db") + "?_pragma=foreign_keys(1)"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}

func seedCategory(t *testing.T, gdb *gorm.DB, name string) model.Category {
	t.Helper()
	c := model.Category{Name: name}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

func seedItem(t *testing.T, gdb *gorm.DB, categoryID int64, name string, price string) model.Item {
	t.Helper()
	it := model.Item{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Quantity:    10,
		StockLevel:  model.StockLevelAvailable,
		CategoryID:  categoryID,
	}
	require.NoError(t, gdb.Create(&it).Error)
	return it
}

func seedOrder(t *testing.T, gdb *gorm.DB, at time.Time, lines ...model.OrderItem) model.Order {
	t.Helper()
	o := model.Order{
		CustomerEmail: "c@example.com",
		FirstName:     "Ana",
		LastName:      "Cruz",
		TotalPrice:    decimal.Zero,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	require.NoError(t, gdb.Create(&o).Error)
	for i := range lines {
		lines[i].OrderID = o.ID
		lines[i].CreatedAt = at
	}
	if len(lines) > 0 {
		require.NoError(t, gdb.Create(&lines).Error)
	}
	return o
}

func count(t *testing.T, gdb *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.WithContext(context.Background()).Model(m).Count(&n).Error)
	return n
}
