package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/onedotone/landing-api/internal/models"
	apperrors "github.com/onedotone/landing-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepository(t *testing.T) (WaitlistRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// Every pooled connection to :memory: would otherwise see its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.ModelRegistry...))

	return NewWaitlistRepository(db), db
}

func newEntry(email string, createdAt time.Time) *models.WaitlistEntry {
	return &models.WaitlistEntry{
		Email:      email,
		Source:     models.WaitlistSourceHeroSection,
		IPAddress:  "unknown",
		DeviceType: "desktop",
		CreatedAt:  createdAt,
	}
}

func TestWaitlistRepository_CreateEntry(t *testing.T) {
	repo, db := newSQLiteRepository(t)
	ctx := context.Background()

	created, err := repo.CreateEntry(ctx, newEntry("first@example.com", fixedNow))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = repo.CreateEntry(ctx, newEntry("first@example.com", fixedNow.Add(time.Minute)))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Equal(t, MessageDuplicate, apperrors.GetHumanReadableMessage(err))

	var count int64
	require.NoError(t, db.Model(&models.WaitlistEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWaitlistRepository_FindEntryByID(t *testing.T) {
	repo, _ := newSQLiteRepository(t)
	ctx := context.Background()

	created, err := repo.CreateEntry(ctx, newEntry("find@example.com", fixedNow))
	require.NoError(t, err)

	found, err := repo.FindEntryByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "find@example.com", found.Email)

	_, err = repo.FindEntryByID(ctx, created.ID+100)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestWaitlistRepository_GetAllEntries_NewestFirst(t *testing.T) {
	repo, _ := newSQLiteRepository(t)
	ctx := context.Background()

	_, err := repo.CreateEntry(ctx, newEntry("old@example.com", fixedNow))
	require.NoError(t, err)
	_, err = repo.CreateEntry(ctx, newEntry("new@example.com", fixedNow.Add(time.Hour)))
	require.NoError(t, err)

	entries, err := repo.GetAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new@example.com", entries[0].Email)
	assert.Equal(t, "old@example.com", entries[1].Email)
}

func TestWaitlistRepository_Ping(t *testing.T) {
	repo, db := newSQLiteRepository(t)

	require.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, db.Migrator().DropTable(&models.WaitlistEntry{}))
	err := repo.Ping(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}
