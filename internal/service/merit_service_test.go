package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/jobs"
)

type meritRepoMock struct {
	configs          map[string]models.MeritConfiguration
	applications     []models.Application
	applicationsRead bool
	savedLists       []models.MeritList
	savedPositions   []models.MeritCriterion
}

func (m *meritRepoMock) FindConfigByID(ctx context.Context, id string) (*models.MeritConfiguration, error) {
	config, ok := m.configs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &config, nil
}

func (m *meritRepoMock) CreateConfig(ctx context.Context, config *models.MeritConfiguration) error {
	if config.ID == "" {
		config.ID = "cfg-new"
	}
	if m.configs == nil {
		m.configs = make(map[string]models.MeritConfiguration)
	}
	m.configs[config.ID] = *config
	return nil
}

func (m *meritRepoMock) UpdateCriteriaPositions(ctx context.Context, configID string, criteria []models.MeritCriterion) error {
	m.savedPositions = criteria
	return nil
}

func (m *meritRepoMock) ListApplications(ctx context.Context) ([]models.Application, error) {
	m.applicationsRead = true
	return m.applications, nil
}

func (m *meritRepoMock) SaveMeritList(ctx context.Context, list *models.MeritList) error {
	if list.ID == "" {
		list.ID = "list-new"
	}
	m.savedLists = append(m.savedLists, *list)
	return nil
}

func (m *meritRepoMock) FindMeritListByID(ctx context.Context, id string) (*models.MeritList, error) {
	for _, list := range m.savedLists {
		if list.ID == id {
			return &list, nil
		}
	}
	return nil, sql.ErrNoRows
}

type queueMock struct {
	enqueued []jobs.Job
}

func (m *queueMock) Enqueue(job jobs.Job) error {
	m.enqueued = append(m.enqueued, job)
	return nil
}

func meritConfig(weights ...models.MeritCriterion) models.MeritConfiguration {
	return models.MeritConfiguration{ID: "cfg-1", Name: "Admissions 2026", Criteria: weights}
}

func TestGenerateMeritListRejectsBadWeightsBeforeReadingApplications(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 60, Order: models.OrderDesc},
			models.MeritCriterion{ID: "c2", Field: models.FieldInterviewScore, Weight: 30, Order: models.OrderDesc},
		)},
		applications: []models.Application{{ID: "a1", EntranceScore: 90}},
	}
	svc := NewMeritService(repo, nil, nil, nil)

	_, err := svc.GenerateMeritList(context.Background(), "cfg-1", GenerateMeritListRequest{Name: "List"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "Total weight must equal 100%", appErrors.FromError(err).Message)
	assert.False(t, repo.applicationsRead, "weight validation must run before candidate data is loaded")
}

func TestGenerateMeritListSingleCriterionDesc(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 100, Order: models.OrderDesc},
		)},
		applications: []models.Application{
			{ID: "a1", ApplicantName: "Asha", EntranceScore: 90},
			{ID: "a2", ApplicantName: "Bilal", EntranceScore: 80},
			{ID: "a3", ApplicantName: "Chitra", EntranceScore: 70},
		},
	}
	svc := NewMeritService(repo, nil, nil, nil)

	list, err := svc.GenerateMeritList(context.Background(), "cfg-1", GenerateMeritListRequest{Name: "List"})
	require.NoError(t, err)
	require.Len(t, list.Entries, 3)

	assert.Equal(t, "a1", list.Entries[0].ApplicationID)
	assert.InDelta(t, 100, list.Entries[0].CompositeScore, 1e-9)
	assert.Equal(t, 1, list.Entries[0].Rank)

	assert.Equal(t, "a2", list.Entries[1].ApplicationID)
	assert.InDelta(t, 50, list.Entries[1].CompositeScore, 1e-9)
	assert.Equal(t, 2, list.Entries[1].Rank)

	assert.Equal(t, "a3", list.Entries[2].ApplicationID)
	assert.InDelta(t, 0, list.Entries[2].CompositeScore, 1e-9)
	assert.Equal(t, 3, list.Entries[2].Rank)

	require.Len(t, repo.savedLists, 1)
	assert.Equal(t, "Asha", repo.savedLists[0].Entries[0].ApplicantName)
}

func TestGenerateMeritListEqualRawValuesShareSubScore(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 100, Order: models.OrderDesc},
		)},
		applications: []models.Application{
			{ID: "a1", ApplicantName: "Asha", EntranceScore: 90},
			{ID: "a2", ApplicantName: "Bilal", EntranceScore: 90},
			{ID: "a3", ApplicantName: "Chitra", EntranceScore: 70},
		},
	}
	svc := NewMeritService(repo, nil, nil, nil)

	list, err := svc.GenerateMeritList(context.Background(), "cfg-1", GenerateMeritListRequest{Name: "List"})
	require.NoError(t, err)
	require.Len(t, list.Entries, 3)

	// Tied raw values share the position of their first occurrence, so the
	// composite ties are exact and the dense rank after the tie is 3.
	assert.Equal(t, list.Entries[0].CompositeScore, list.Entries[1].CompositeScore)
	assert.Equal(t, 1, list.Entries[0].Rank)
	assert.Equal(t, 1, list.Entries[1].Rank)
	assert.Equal(t, 3, list.Entries[2].Rank)
}

func TestGenerateMeritListAscendingCriterion(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 60, Order: models.OrderDesc},
			models.MeritCriterion{ID: "c2", Field: models.FieldDistanceKM, Weight: 40, Order: models.OrderAsc},
		)},
		applications: []models.Application{
			{ID: "a1", ApplicantName: "Asha", EntranceScore: 90, DistanceKM: 5},
			{ID: "a2", ApplicantName: "Bilal", EntranceScore: 80, DistanceKM: 12},
		},
	}
	svc := NewMeritService(repo, nil, nil, nil)

	list, err := svc.GenerateMeritList(context.Background(), "cfg-1", GenerateMeritListRequest{Name: "List"})
	require.NoError(t, err)
	require.Len(t, list.Entries, 2)

	// Asha leads on entrance score and lives closer, so she takes the full
	// 100 on both criteria.
	assert.Equal(t, "a1", list.Entries[0].ApplicationID)
	assert.InDelta(t, 100, list.Entries[0].CompositeScore, 1e-9)
	assert.InDelta(t, 0, list.Entries[1].CompositeScore, 1e-9)
}

func TestGenerateMeritListSingleApplication(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 100, Order: models.OrderDesc},
		)},
		applications: []models.Application{{ID: "a1", ApplicantName: "Asha", EntranceScore: 42}},
	}
	svc := NewMeritService(repo, nil, nil, nil)

	list, err := svc.GenerateMeritList(context.Background(), "cfg-1", GenerateMeritListRequest{Name: "List"})
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	assert.InDelta(t, 100, list.Entries[0].CompositeScore, 1e-9)
	assert.Equal(t, 1, list.Entries[0].Rank)
}

func TestGenerateMeritListNoApplications(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 100, Order: models.OrderDesc},
		)},
	}
	svc := NewMeritService(repo, nil, nil, nil)

	_, err := svc.GenerateMeritList(context.Background(), "cfg-1", GenerateMeritListRequest{Name: "List"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "no applications found", appErrors.FromError(err).Message)
}

func TestGenerateMeritListUnknownConfig(t *testing.T) {
	svc := NewMeritService(&meritRepoMock{}, nil, nil, nil)

	_, err := svc.GenerateMeritList(context.Background(), "missing", GenerateMeritListRequest{Name: "List"})
	require.Error(t, err)
	assert.Equal(t, "merit configuration not found", appErrors.FromError(err).Message)
}

func TestCreateConfigValidatesWeightsAndFields(t *testing.T) {
	svc := NewMeritService(&meritRepoMock{}, nil, nil, nil)

	_, err := svc.CreateConfig(context.Background(), CreateMeritConfigRequest{
		Name: "Bad weights",
		Criteria: []CriterionRequest{
			{Field: models.FieldEntranceScore, Weight: 60, Order: "desc"},
			{Field: models.FieldInterviewScore, Weight: 30, Order: "desc"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "Total weight must equal 100%", appErrors.FromError(err).Message)

	_, err = svc.CreateConfig(context.Background(), CreateMeritConfigRequest{
		Name: "Bad field",
		Criteria: []CriterionRequest{
			{Field: "shoe_size", Weight: 100, Order: "desc"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateConfigAssignsPositions(t *testing.T) {
	repo := &meritRepoMock{}
	svc := NewMeritService(repo, nil, nil, nil)

	config, err := svc.CreateConfig(context.Background(), CreateMeritConfigRequest{
		Name: "Admissions 2026",
		Criteria: []CriterionRequest{
			{Field: models.FieldEntranceScore, Weight: 70, Order: "desc"},
			{Field: models.FieldDistanceKM, Weight: 30, Order: "asc"},
		},
	})
	require.NoError(t, err)
	require.Len(t, config.Criteria, 2)
	assert.Equal(t, 0, config.Criteria[0].Position)
	assert.Equal(t, 1, config.Criteria[1].Position)
	assert.Equal(t, models.OrderAsc, config.Criteria[1].Order)
}

func TestReorderItems(t *testing.T) {
	criteria := []models.MeritCriterion{
		{ID: "c1", Position: 0},
		{ID: "c2", Position: 1},
		{ID: "c3", Position: 2},
	}

	moved := reorderItems(criteria, 0, 2)
	require.Len(t, moved, 3)
	assert.Equal(t, []string{"c2", "c3", "c1"}, []string{moved[0].ID, moved[1].ID, moved[2].ID})
	for i, criterion := range moved {
		assert.Equal(t, i, criterion.Position)
	}
}

func TestReorderItemsNoOpReturnsInputUnchanged(t *testing.T) {
	criteria := []models.MeritCriterion{
		{ID: "c1", Position: 0},
		{ID: "c2", Position: 1},
	}

	same := reorderItems(criteria, 1, 1)
	assert.Equal(t, criteria, same)

	outOfRange := reorderItems(criteria, 5, 0)
	assert.Equal(t, criteria, outOfRange)
}

func TestReorderCriteriaNoOpSkipsPersistence(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 60, Order: models.OrderDesc, Position: 0},
			models.MeritCriterion{ID: "c2", Field: models.FieldDistanceKM, Weight: 40, Order: models.OrderAsc, Position: 1},
		)},
	}
	svc := NewMeritService(repo, nil, nil, nil)

	criteria, err := svc.ReorderCriteria(context.Background(), "cfg-1", ReorderCriteriaRequest{FromIndex: 1, ToIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "c1", criteria[0].ID)
	assert.Nil(t, repo.savedPositions)

	criteria, err = svc.ReorderCriteria(context.Background(), "cfg-1", ReorderCriteriaRequest{FromIndex: 1, ToIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, "c2", criteria[0].ID)
	require.Len(t, repo.savedPositions, 2)
	assert.Equal(t, 0, repo.savedPositions[0].Position)
}

func TestEnqueueRefresh(t *testing.T) {
	repo := &meritRepoMock{
		configs: map[string]models.MeritConfiguration{"cfg-1": meritConfig(
			models.MeritCriterion{ID: "c1", Field: models.FieldEntranceScore, Weight: 100, Order: models.OrderDesc},
		)},
	}
	queue := &queueMock{}
	svc := NewMeritService(repo, queue, nil, nil)

	require.NoError(t, svc.EnqueueRefresh(context.Background(), "cfg-1", GenerateMeritListRequest{Name: "Nightly"}))
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "merit_list_refresh", queue.enqueued[0].Type)

	payload, ok := queue.enqueued[0].Payload.(MeritRefreshPayload)
	require.True(t, ok)
	assert.Equal(t, "cfg-1", payload.ConfigID)
	assert.Equal(t, "Nightly", payload.ListName)
}
