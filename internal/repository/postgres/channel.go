package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/searchfeed/pkg/database"
	apperrors "github.com/utafrali/searchfeed/pkg/errors"

	"github.com/utafrali/searchfeed/internal/domain"
)

// ChannelRepository implements repository.ChannelRepository using PostgreSQL.
type ChannelRepository struct {
	db database.DBTX
}

// NewChannelRepository creates a new PostgreSQL-backed sales channel repository.
func NewChannelRepository(db database.DBTX) *ChannelRepository {
	return &ChannelRepository{db: db}
}

const channelColumns = `id, name, language_id, navigation_category_id, customer_group_ids, is_default`

// GetByID retrieves a sales channel with its domains.
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*domain.SalesChannel, error) {
	query := fmt.Sprintf(`SELECT %s FROM sales_channels WHERE id = $1`, channelColumns)
	return r.scanChannel(ctx, query, id)
}

// GetDefault retrieves the storefront's ambient sales channel.
func (r *ChannelRepository) GetDefault(ctx context.Context) (*domain.SalesChannel, error) {
	query := fmt.Sprintf(`SELECT %s FROM sales_channels WHERE is_default ORDER BY id LIMIT 1`, channelColumns)
	return r.scanChannel(ctx, query)
}

func (r *ChannelRepository) scanChannel(ctx context.Context, query string, args ...any) (*domain.SalesChannel, error) {
	var sc domain.SalesChannel
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&sc.ID,
		&sc.Name,
		&sc.LanguageID,
		&sc.NavigationCategoryID,
		&sc.CustomerGroupIDs,
		&sc.IsDefault,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("sales channel", fmt.Sprint(args...))
		}
		return nil, fmt.Errorf("get sales channel: %w", err)
	}

	domains, err := r.loadDomains(ctx, sc.ID)
	if err != nil {
		return nil, err
	}
	sc.Domains = domains

	return &sc, nil
}

func (r *ChannelRepository) loadDomains(ctx context.Context, channelID string) ([]domain.Domain, error) {
	query := `
		SELECT id, url, language_id
		FROM sales_channel_domains
		WHERE sales_channel_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("load channel domains: %w", err)
	}
	defer rows.Close()

	var domains []domain.Domain
	for rows.Next() {
		var d domain.Domain
		if err := rows.Scan(&d.ID, &d.URL, &d.LanguageID); err != nil {
			return nil, fmt.Errorf("scan channel domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}
