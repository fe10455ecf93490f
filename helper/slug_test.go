package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tourism_marketplace/database"
	"tourism_marketplace/model"
)

func TestGenerateUniqueSlug(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:slugs?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	first, err := GenerateUniqueSlug(db, &model.Attraction{}, "Saltos del Monday", 0)
	require.NoError(t, err)
	assert.Equal(t, "saltos-del-monday", first)

	existing := model.Attraction{Name: "Saltos del Monday", Slug: first}
	require.NoError(t, db.Create(&existing).Error)

	second, err := GenerateUniqueSlug(db, &model.Attraction{}, "Saltos del Monday", 0)
	require.NoError(t, err)
	assert.Equal(t, "saltos-del-monday-1", second)

	same, err := GenerateUniqueSlug(db, &model.Attraction{}, "Saltos del Monday", existing.ID)
	require.NoError(t, err)
	assert.Equal(t, first, same, "a row keeps its own slug")

	require.NoError(t, db.Delete(&existing).Error)
	afterDelete, err := GenerateUniqueSlug(db, &model.Attraction{}, "Saltos del Monday", 0)
	require.NoError(t, err)
	assert.Equal(t, "saltos-del-monday-1", afterDelete, "soft-deleted rows still hold their slug")
}
