package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	"github.com/noah-isme/kaizen-portal-api/internal/repository"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeImageStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeImageStore) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	return "local://" + key, nil
}

type submissionFixture struct {
	svc     *SubmissionService
	repo    *repository.MemorySubmissionRepository
	images  *fakeImageStore
	cache   *memoryCache
	metrics *MetricsService
	now     time.Time
}

func newSubmissionFixture(t *testing.T, cfg SubmissionConfig, seed ...models.Submission) *submissionFixture {
	t.Helper()
	f := &submissionFixture{
		repo:    repository.NewMemorySubmissionRepository(seed...),
		images:  &fakeImageStore{},
		cache:   newMemoryCache(),
		metrics: NewMetricsService(),
		now:     time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC),
	}
	f.svc = NewSubmissionService(f.repo, nil, nil, NewIdentifierService(WithIdentifierClock(func() time.Time { return f.now })),
		NewLifecyclePolicy(0), cfg, nil,
		WithImageStore(f.images),
		WithSubmissionCache(NewCacheService(f.cache, nil, time.Minute, nil, true)),
		WithSubmissionMetrics(f.metrics),
		WithSubmissionClock(func() time.Time { return f.now }),
	)
	return f
}

func createRequest() dto.CreateSubmissionRequest {
	return dto.CreateSubmissionRequest{
		OperatorName:     "  Ravi Kumar ",
		Department:       "production",
		Plant:            "PUNE",
		Title:            "Reduce changeover time",
		Description:      "Use quick-release clamps on press line 3",
		ExpectedBenefits: "Saves 20 minutes per changeover",
		FinancialImpact:  int64Ptr(250000),
	}
}

var (
	superAdmin   = models.Actor{ID: "u-1", Name: "Asha Menon", Role: models.RoleSuperAdmin}
	qualityAdmin = models.Actor{ID: "u-2", Name: "Neha Joshi", Role: models.RoleDepartmentAdmin, Department: "Quality"}
)

func TestSubmissionServiceCreate(t *testing.T) {
	f := newSubmissionFixture(t, SubmissionConfig{})
	require.NoError(t, f.cache.Set(context.Background(), "dash:stale", 1, time.Minute))

	resp, err := f.svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.True(t, ValidateID(resp.ID))
	assert.Equal(t, "Ravi Kumar", resp.OperatorName)
	assert.Equal(t, "Production", resp.Department)
	assert.Equal(t, "Pune", resp.Plant)
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.Equal(t, models.ApprovalOperationsHead, resp.ApprovalLevel)
	assert.Equal(t, f.now, resp.SubmissionDate)
	assert.True(t, resp.Editable)
	assert.Equal(t, "Today", resp.SubmittedAgo)

	stored, err := f.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), stored.FinancialImpact)

	assert.NotContains(t, f.cache.items, "dash:stale")
	assert.Equal(t, uint64(1), f.metrics.Snapshot().SubmissionsCreated)
}

func TestSubmissionServiceCreatePlantHeadToday(t *testing.T) {
	f := newSubmissionFixture(t, SubmissionConfig{})
	req := createRequest()
	req.FinancialImpact = int64Ptr(75000)

	resp, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPlantHead, resp.ApprovalLevel)
	assert.Equal(t, models.ApprovalPlantHead, resp.RequiredApprovalLevel)
	assert.True(t, resp.Editable)
	assert.Zero(t, resp.DaysSinceSubmission)

	f.now = f.now.Add(31 * 24 * time.Hour)
	later, err := f.svc.Get(context.Background(), resp.ID, superAdmin)
	require.NoError(t, err)
	assert.False(t, later.Editable)
	assert.Equal(t, 31, later.DaysSinceSubmission)
}

func TestSubmissionServiceCreateValidation(t *testing.T) {
	f := newSubmissionFixture(t, SubmissionConfig{})
	req := createRequest()
	req.Title = "  "
	req.Department = "Logistics"
	req.FinancialImpact = int64Ptr(0)

	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	require.ErrorIs(t, err, appErrors.ErrValidation)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, []string{
		"Kaizen title is required",
		"Financial impact must be greater than 0",
		"Unknown department: Logistics",
	}, appErr.Details)

	list, err := f.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmissionServiceListScopesDepartmentAdmins(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	seed := []models.Submission{
		sampleSubmission("KZ-A-001", "Quality", "Pune", models.StatusPending, 50000, now.AddDate(0, 0, -1)),
		sampleSubmission("KZ-A-002", "Production", "Pune", models.StatusPending, 150000, now.AddDate(0, 0, -2)),
		sampleSubmission("KZ-A-003", "Quality", "Nashik", models.StatusApproved, 500000, now.AddDate(0, 0, -3)),
	}
	f := newSubmissionFixture(t, SubmissionConfig{}, seed...)

	all, err := f.svc.List(context.Background(), dto.SubmissionQuery{}, superAdmin)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Pagination.TotalCount)
	assert.Equal(t, "KZ-A-001", all.Items[0].ID)

	scoped, err := f.svc.List(context.Background(), dto.SubmissionQuery{
		Filter: models.SubmissionFilter{Department: "Production"},
	}, qualityAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, scoped.Pagination.TotalCount)
	for _, item := range scoped.Items {
		assert.Equal(t, "Quality", item.Department)
	}

	// department text is not searchable outside the global view
	searched, err := f.svc.List(context.Background(), dto.SubmissionQuery{Filter: models.SubmissionFilter{Search: "quality"}}, qualityAdmin)
	require.NoError(t, err)
	assert.Zero(t, searched.Pagination.TotalCount)

	paged, err := f.svc.List(context.Background(), dto.SubmissionQuery{Page: 2, PageSize: 2}, superAdmin)
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, "KZ-A-003", paged.Items[0].ID)

	_, err = f.svc.List(context.Background(), dto.SubmissionQuery{Filter: models.SubmissionFilter{AmountRange: "huge"}}, superAdmin)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSubmissionServiceListPastLastPage(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	f := newSubmissionFixture(t, SubmissionConfig{},
		sampleSubmission("KZ-A-001", "Quality", "Pune", models.StatusPending, 50000, now.AddDate(0, 0, -1)),
		sampleSubmission("KZ-A-002", "Quality", "Pune", models.StatusPending, 50000, now.AddDate(0, 0, -2)),
	)

	for _, page := range []int{3, 1 << 40, 1 << 62, math.MaxInt} {
		resp, err := f.svc.List(context.Background(), dto.SubmissionQuery{Page: page, PageSize: 20}, superAdmin)
		require.NoError(t, err, page)
		assert.Empty(t, resp.Items, page)
		assert.Equal(t, 2, resp.Pagination.TotalCount)
	}
}

func TestSubmissionServiceUpdate(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	fresh := sampleSubmission("KZ-A-001", "Production", "Pune", models.StatusPending, 90000, now.AddDate(0, 0, -30))
	stale := sampleSubmission("KZ-A-002", "Production", "Pune", models.StatusPending, 90000, now.AddDate(0, 0, -31))

	t.Run("frozen level", func(t *testing.T) {
		f := newSubmissionFixture(t, SubmissionConfig{}, fresh, stale)
		resp, err := f.svc.Update(context.Background(), fresh.ID, createRequest(), superAdmin)
		require.NoError(t, err)
		assert.Equal(t, int64(250000), resp.FinancialImpact)
		assert.Equal(t, models.ApprovalPlantHead, resp.ApprovalLevel)
		assert.Equal(t, models.ApprovalOperationsHead, resp.RequiredApprovalLevel)
		assert.Equal(t, models.StatusPending, resp.Status)
		require.NotNil(t, resp.EditedBy)
		assert.Equal(t, "Asha Menon", *resp.EditedBy)
		require.NotNil(t, resp.LastEditDate)
		assert.Equal(t, now, *resp.LastEditDate)
	})

	t.Run("restamped level", func(t *testing.T) {
		f := newSubmissionFixture(t, SubmissionConfig{RestampApprovalLevel: true}, fresh)
		resp, err := f.svc.Update(context.Background(), fresh.ID, createRequest(), superAdmin)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalOperationsHead, resp.ApprovalLevel)
	})

	t.Run("window closed", func(t *testing.T) {
		f := newSubmissionFixture(t, SubmissionConfig{}, stale)
		_, err := f.svc.Update(context.Background(), stale.ID, createRequest(), superAdmin)
		require.ErrorIs(t, err, appErrors.ErrEditWindowClosed)
		assert.Equal(t, uint64(1), f.metrics.Snapshot().EditRejections)
	})

	t.Run("other department hidden", func(t *testing.T) {
		f := newSubmissionFixture(t, SubmissionConfig{}, fresh)
		_, err := f.svc.Update(context.Background(), fresh.ID, createRequest(), qualityAdmin)
		require.ErrorIs(t, err, appErrors.ErrNotFound)
	})
}

func TestSubmissionServiceDecide(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	pending := sampleSubmission("KZ-A-001", "Quality", "Pune", models.StatusPending, 90000, now.AddDate(0, 0, -2))
	f := newSubmissionFixture(t, SubmissionConfig{}, pending)

	_, err := f.svc.Decide(context.Background(), pending.ID, dto.DecisionRequest{Status: models.StatusPending}, superAdmin)
	require.ErrorIs(t, err, appErrors.ErrValidation)

	resp, err := f.svc.Decide(context.Background(), pending.ID, dto.DecisionRequest{Status: models.StatusApproved, Note: " good idea "}, qualityAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, resp.Status)
	require.NotNil(t, resp.DecidedBy)
	assert.Equal(t, "Neha Joshi", *resp.DecidedBy)
	require.NotNil(t, resp.DecisionNote)
	assert.Equal(t, "good idea", *resp.DecisionNote)

	_, err = f.svc.Decide(context.Background(), pending.ID, dto.DecisionRequest{Status: models.StatusRejected}, superAdmin)
	require.ErrorIs(t, err, appErrors.ErrAlreadyDecided)

	stored, err := f.repo.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Decisions)

	_, err = f.svc.Decide(context.Background(), "KZ-MISSING-000", dto.DecisionRequest{Status: models.StatusApproved}, superAdmin)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSubmissionServiceAttachImage(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	sub := sampleSubmission("KZ-A-001", "Quality", "Pune", models.StatusPending, 90000, now)
	f := newSubmissionFixture(t, SubmissionConfig{ImageMaxBytes: 64}, sub)

	resp, err := f.svc.AttachImage(context.Background(), sub.ID, pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, "local://images/KZ-A-001.png", resp.ImageRef)
	assert.Equal(t, []string{"images/KZ-A-001.png"}, f.images.keys)

	stored, err := f.repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImageRef)
	assert.Equal(t, "local://images/KZ-A-001.png", *stored.ImageRef)

	_, err = f.svc.AttachImage(context.Background(), sub.ID, []byte("plain text, not an image"))
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedMedia)

	_, err = f.svc.AttachImage(context.Background(), sub.ID, make([]byte, 65))
	assert.ErrorIs(t, err, appErrors.ErrBadRequest)

	_, err = f.svc.AttachImage(context.Background(), "KZ-B-404", pngHeader)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSubmissionServiceAttachImageRefusals(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	stale := sampleSubmission("KZ-A-001", "Quality", "Pune", models.StatusPending, 90000, now.AddDate(0, 0, -200))
	approved := sampleSubmission("KZ-A-002", "Quality", "Pune", models.StatusApproved, 90000, now.AddDate(0, 0, -2))
	rejected := sampleSubmission("KZ-A-003", "Quality", "Pune", models.StatusRejected, 90000, now.AddDate(0, 0, -2))
	fresh := sampleSubmission("KZ-A-004", "Quality", "Pune", models.StatusPending, 90000, now.AddDate(0, 0, -1))
	f := newSubmissionFixture(t, SubmissionConfig{ImageMaxBytes: 64}, stale, approved, rejected, fresh)

	_, err := f.svc.AttachImage(context.Background(), stale.ID, pngHeader)
	assert.ErrorIs(t, err, appErrors.ErrEditWindowClosed)

	_, err = f.svc.AttachImage(context.Background(), approved.ID, pngHeader)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = f.svc.AttachImage(context.Background(), rejected.ID, pngHeader)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = f.svc.AttachImage(context.Background(), fresh.ID, pngHeader)
	require.NoError(t, err)
	_, err = f.svc.AttachImage(context.Background(), fresh.ID, pngHeader)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	assert.Equal(t, []string{"images/KZ-A-004.png"}, f.images.keys)
	for _, id := range []string{stale.ID, approved.ID, rejected.ID} {
		stored, err := f.repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, stored.ImageRef, id)
	}
}
