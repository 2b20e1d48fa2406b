package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// CampaignRepository manages persistence for campaign records.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository constructs a CampaignRepository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// List returns campaigns matching the provided filters.
func (r *CampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"name":       "name",
		"start_date": "start_date",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, description, start_date, end_date, created_by, created_at, updated_at
        FROM campaigns WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, where, column, order, size, offset)

	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM campaigns WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}
	return campaigns, total, nil
}

// FindByID fetches a campaign by ID.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	const query = `SELECT id, name, description, start_date, end_date, created_by, created_at, updated_at
        FROM campaigns WHERE id = $1`
	var campaign models.Campaign
	if err := r.db.GetContext(ctx, &campaign, query, id); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Create inserts a new campaign record.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now
	const query = `INSERT INTO campaigns (id, name, description, start_date, end_date, created_by, created_at, updated_at)
        VALUES (:id, :name, :description, :start_date, :end_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// Delete removes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}
