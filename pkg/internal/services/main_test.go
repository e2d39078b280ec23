package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emberridge/inkwell/pkg/internal/database"
	"github.com/emberridge/inkwell/pkg/internal/models"
)

// testDB opens a fresh in-memory source per test and runs the regular
// migration against it, so the tests exercise the same schema the service
// runs on.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))

	return db
}

func getTagByName(t *testing.T, db *gorm.DB, name string) models.Tag {
	t.Helper()

	var tag models.Tag
	require.NoError(t, db.Where("name = ?", name).First(&tag).Error)
	return tag
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}
