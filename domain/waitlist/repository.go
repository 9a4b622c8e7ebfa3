package waitlist

import (
	"context"
	"errors"

	"github.com/onedotone/landing-api/internal/models"
	apperrors "github.com/onedotone/landing-api/pkg/errors"
	"gorm.io/gorm"
)

// WaitlistRepository is the contact-list store. Implementations classify their
// failures into AppErrors so callers never see raw driver or HTTP errors.
//
//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist
type WaitlistRepository interface {
	// CreateEntry inserts exactly one row; a second insert for the same email is a conflict.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// FindEntryByID retrieves a waitlist entry by its unique ID.
	FindEntryByID(ctx context.Context, id uint) (*models.WaitlistEntry, error)
	// GetAllEntries returns all waitlist entries, newest first.
	GetAllEntries(ctx context.Context) ([]*models.WaitlistEntry, error)
	// Ping checks that the store is reachable and the table exists.
	Ping(ctx context.Context) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, classifyDatabaseError(err)
	}

	return entry, nil
}

func (wr *waitlistRepository) FindEntryByID(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	if err := wr.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Waitlist entry not found", err)
		}
		return nil, classifyDatabaseError(err)
	}

	return &entry, nil
}

func (wr *waitlistRepository) GetAllEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	var entries []*models.WaitlistEntry

	if err := wr.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, classifyDatabaseError(err)
	}

	return entries, nil
}

func (wr *waitlistRepository) Ping(ctx context.Context) error {
	sqlDB, err := wr.db.DB()
	if err != nil {
		return apperrors.NewConfigurationError(MessageUnavailable, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return classifyDatabaseError(err)
	}

	if !wr.db.WithContext(ctx).Migrator().HasTable(&models.WaitlistEntry{}) {
		return apperrors.NewConfigurationError(MessageUnavailable, errors.New("waitlist table does not exist"))
	}

	return nil
}
