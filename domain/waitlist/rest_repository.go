package waitlist

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/onedotone/landing-api/internal/models"
	apperrors "github.com/onedotone/landing-api/pkg/errors"
	"github.com/onedotone/landing-api/pkg/postgrest"
)

// RESTClient is the subset of the PostgREST client the store uses.
type RESTClient interface {
	Insert(ctx context.Context, table string, row any, out any) error
	Select(ctx context.Context, table string, query url.Values, out any) error
	Ping(ctx context.Context, table string) error
}

type restWaitlistRepository struct {
	client RESTClient
	table  string
}

// NewRESTWaitlistRepository stores entries through a hosted PostgREST endpoint.
func NewRESTWaitlistRepository(client RESTClient) WaitlistRepository {
	return &restWaitlistRepository{
		client: client,
		table:  models.WaitlistEntry{}.TableName(),
	}
}

// NewRESTWaitlistRepositoryFromConfig fails fast when the endpoint or key is missing.
func NewRESTWaitlistRepositoryFromConfig(cfg *postgrest.Config) (WaitlistRepository, error) {
	client, err := postgrest.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("waitlist store: %w", err)
	}
	return NewRESTWaitlistRepository(client), nil
}

func (rr *restWaitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	var stored []models.WaitlistEntry

	if err := rr.client.Insert(ctx, rr.table, entry, &stored); err != nil {
		return nil, classifyRESTError(err)
	}

	if len(stored) == 0 {
		return entry, nil
	}

	return &stored[0], nil
}

func (rr *restWaitlistRepository) FindEntryByID(ctx context.Context, id uint) (*models.WaitlistEntry, error) {
	query := url.Values{}
	query.Set("id", "eq."+strconv.FormatUint(uint64(id), 10))
	query.Set("limit", "1")

	var rows []*models.WaitlistEntry
	if err := rr.client.Select(ctx, rr.table, query, &rows); err != nil {
		return nil, classifyRESTError(err)
	}

	if len(rows) == 0 {
		return nil, apperrors.NewNotFoundError("Waitlist entry not found", nil)
	}

	return rows[0], nil
}

func (rr *restWaitlistRepository) GetAllEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	query := url.Values{}
	query.Set("order", "created_at.desc,id.desc")

	var rows []*models.WaitlistEntry
	if err := rr.client.Select(ctx, rr.table, query, &rows); err != nil {
		return nil, classifyRESTError(err)
	}

	return rows, nil
}

func (rr *restWaitlistRepository) Ping(ctx context.Context) error {
	if err := rr.client.Ping(ctx, rr.table); err != nil {
		return classifyRESTError(err)
	}
	return nil
}
