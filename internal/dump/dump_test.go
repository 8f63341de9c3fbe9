package dump

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"

	"thai-travel-portal/internal/config"
	"thai-travel-portal/internal/database"
	"thai-travel-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "dump.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedContent(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Destination{Name: "Krabi", Category: "beach", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.News{Title: "Loy Krathong", Slug: "loy-krathong", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.PartnerNotification{
		Title: "Spa", IsActive: true, TargetScope: models.ScopeSpecific, TargetedNewsIDs: []uint{1},
	}).Error)
}

func TestCollectAndRestore(t *testing.T) {
	src := setupDB(t)
	seedContent(t, src)
	require.NoError(t, src.Model(&models.HomeSettings{}).Where("id = 1").Update("hero_title", "Sawasdee").Error)

	d, err := Collect(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, Version, d.Version)
	require.Len(t, d.Destinations, 1)
	require.Len(t, d.PartnerNotifications, 1)
	require.NotNil(t, d.HomeSettings)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	parsed, err := Parse(raw)
	require.NoError(t, err)

	dst := setupDB(t)
	require.NoError(t, dst.Create(&models.Destination{Name: "to be replaced"}).Error)

	counts, err := Restore(context.Background(), dst, parsed)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["destinations"])
	assert.Equal(t, 1, counts["news"])
	assert.Equal(t, 0, counts["music_tracks"])
	assert.Equal(t, 1, counts["home_settings"])

	var dests []models.Destination
	require.NoError(t, dst.Find(&dests).Error)
	require.Len(t, dests, 1)
	assert.Equal(t, "Krabi", dests[0].Name)

	var n models.PartnerNotification
	require.NoError(t, dst.First(&n).Error)
	assert.Equal(t, []uint{1}, n.TargetedNewsIDs)
	assert.Equal(t, models.ScopeSpecific, n.TargetScope)

	var home models.HomeSettings
	require.NoError(t, dst.First(&home, 1).Error)
	assert.Equal(t, "Sawasdee", home.HeroTitle)
}

func TestRestore_NilTablesUntouched(t *testing.T) {
	db := setupDB(t)
	seedContent(t, db)

	counts, err := Restore(context.Background(), db, &Dump{Version: Version, MusicTracks: []models.MusicTrack{}})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"music_tracks": 0}, counts)

	var total int64
	db.Model(&models.Destination{}).Count(&total)
	assert.EqualValues(t, 1, total)
}

func TestParse_RejectsNewerVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version": 99}`))
	assert.Error(t, err)
	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	db := setupDB(t)
	seedContent(t, db)
	d, err := Collect(context.Background(), db)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.WriteCSV(&buf, "destinations"))
	body := bytes.TrimPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0][0])
	assert.Contains(t, records[0], "name")
	assert.Contains(t, records[1], "Krabi")
	assert.Contains(t, records[1], "true")

	assert.Error(t, d.WriteCSV(&buf, "users"))
	assert.False(t, IsTable("users"))
	assert.False(t, IsTable("app_sessions"))
}

func TestWriteXLSX(t *testing.T) {
	db := setupDB(t)
	seedContent(t, db)
	d, err := Collect(context.Background(), db)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, Tables, f.GetSheetList())

	rows, err := f.GetRows("news")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "Loy Krathong")
}
