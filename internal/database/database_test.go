package database

import (
	"context"
	"path/filepath"
	"testing"

	"thai-travel-portal/internal/config"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestAutoMigrate_CreatesSingletons(t *testing.T) {
	db := setupTestDB(t)

	var home models.HomeSettings
	require.NoError(t, db.First(&home, 1).Error)
	assert.True(t, home.ShowNews)

	var count int64
	db.Model(&models.CultureVideo{}).Count(&count)
	assert.EqualValues(t, 1, count)

	// running twice keeps one row
	require.NoError(t, AutoMigrate(db))
	db.Model(&models.HomeSettings{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSeedAdmin(t *testing.T) {
	db := setupTestDB(t)
	seed := config.AdminSeed{Username: "admin", Password: "AdminPass1", SecurityQuestion: "Island?", SecurityAnswer: "Koh Tao"}

	require.NoError(t, SeedAdmin(db, seed, bcrypt.MinCost, zap.NewNop()))
	require.NoError(t, SeedAdmin(db, seed, bcrypt.MinCost, zap.NewNop()))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, util.CheckPassword("AdminPass1", admins[0].PasswordHash))
	assert.True(t, util.CheckPassword("koh tao", admins[0].SecurityAnswerHash))
}

func TestSerializedColumnsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	n := models.PartnerNotification{
		Title:           "Island hopping deal",
		IsActive:        true,
		ShowOnPages:     models.PageSet{News: true},
		TargetScope:     models.ScopeSpecific,
		TargetedNewsIDs: []uint{5, 8},
	}
	require.NoError(t, db.Create(&n).Error)

	var got models.PartnerNotification
	require.NoError(t, db.First(&got, n.ID).Error)
	assert.Equal(t, []uint{5, 8}, got.TargetedNewsIDs)
	assert.True(t, got.ShowOnPages.News)
	assert.False(t, got.ShowOnPages.Home)
}

func TestInit(t *testing.T) {
	t.Run("creates the parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "portal.db")
		db, err := Init(config.DatabaseConfig{Path: path}, zap.NewNop())
		require.NoError(t, err)
		defer Close(db)

		assert.FileExists(t, path)
		assert.NoError(t, Ping(context.Background(), db))

		var mode string
		require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
		assert.Equal(t, "wal", mode)
		var fk int
		require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
		assert.Equal(t, 1, fk)
	})

	t.Run("in memory", func(t *testing.T) {
		db, err := Init(config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
		require.NoError(t, err)
		defer Close(db)
		require.NoError(t, AutoMigrate(db))

		var count int64
		require.NoError(t, db.Model(&models.HomeSettings{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := Init(config.DatabaseConfig{}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestPing_Closed(t *testing.T) {
	db, err := Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "p.db")}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Close(db))
	assert.Error(t, Ping(context.Background(), db))
}

func TestInit_GormLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "log.db"), LogMode: true}, zap.New(core))
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Exec("SELECT 1").Error)

	gormLines := logs.FilterLoggerName("gorm").All()
	require.NotEmpty(t, gormLines)
	assert.Contains(t, gormLines[len(gormLines)-1].Message, "SELECT 1")
}
