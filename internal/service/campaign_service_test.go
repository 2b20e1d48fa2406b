package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type mockCampaignRepo struct {
	campaigns map[string]models.Campaign
	deleted   []string
}

func (m *mockCampaignRepo) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	var list []models.Campaign
	for _, c := range m.campaigns {
		list = append(list, c)
	}
	return list, len(list), nil
}

func (m *mockCampaignRepo) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	if c, ok := m.campaigns[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	if m.campaigns == nil {
		m.campaigns = make(map[string]models.Campaign)
	}
	if campaign.ID == "" {
		campaign.ID = "camp-new"
	}
	m.campaigns[campaign.ID] = *campaign
	return nil
}

func (m *mockCampaignRepo) Delete(ctx context.Context, id string) error {
	delete(m.campaigns, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestCampaignCreate(t *testing.T) {
	repo := &mockCampaignRepo{}
	svc := NewCampaignService(repo, nil, nil)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	campaign, err := svc.Create(context.Background(), CreateCampaignRequest{
		Name:        "Autumn Placement",
		Description: "Campus drive",
		StartDate:   start,
		EndDate:     start.AddDate(0, 2, 0),
	}, "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, campaign.ID)
	require.NotNil(t, campaign.Description)
	assert.Equal(t, "Campus drive", *campaign.Description)
	require.NotNil(t, campaign.CreatedBy)
	assert.Equal(t, "user-1", *campaign.CreatedBy)
}

func TestCampaignCreateRejectsInvertedDates(t *testing.T) {
	svc := NewCampaignService(&mockCampaignRepo{}, nil, nil)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateCampaignRequest{
		Name:      "Broken",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, -1),
	}, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCampaignCreateRequiresName(t *testing.T) {
	svc := NewCampaignService(&mockCampaignRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateCampaignRequest{
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 1, 0),
	}, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCampaignDeleteUnknown(t *testing.T) {
	svc := NewCampaignService(&mockCampaignRepo{}, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCampaignDelete(t *testing.T) {
	repo := &mockCampaignRepo{campaigns: map[string]models.Campaign{
		"camp-1": {ID: "camp-1", Name: "Existing"},
	}}
	svc := NewCampaignService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "camp-1"))
	assert.Equal(t, []string{"camp-1"}, repo.deleted)
}
