package repository

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

func memorySeed(now time.Time) []models.Submission {
	return []models.Submission{
		{ID: "KZ-A-001", Department: "Production", Plant: "Pune", FinancialImpact: 50000, SubmissionDate: now.Add(-48 * time.Hour), Status: models.StatusPending, ApprovalLevel: models.ApprovalPlantHead},
		{ID: "KZ-B-002", Department: "Quality", Plant: "Nashik", FinancialImpact: 150000, SubmissionDate: now, Status: models.StatusPending, ApprovalLevel: models.ApprovalOperationsHead},
	}
}

func TestMemorySubmissionRepositoryListNewestFirst(t *testing.T) {
	now := time.Now()
	repo := NewMemorySubmissionRepository(memorySeed(now)...)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "KZ-B-002", list[0].ID)
	assert.Equal(t, "KZ-A-001", list[1].ID)
}

func TestMemorySubmissionRepositoryCreateRejectsDuplicates(t *testing.T) {
	repo := NewMemorySubmissionRepository(memorySeed(time.Now())...)
	err := repo.Create(context.Background(), &models.Submission{ID: "KZ-A-001"})
	require.Error(t, err)
}

func TestMemorySubmissionRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemorySubmissionRepository(memorySeed(time.Now())...)

	found, err := repo.GetByID(context.Background(), "KZ-A-001")
	require.NoError(t, err)
	found.Title = "mutated"

	again, err := repo.GetByID(context.Background(), "KZ-A-001")
	require.NoError(t, err)
	assert.Empty(t, again.Title)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemorySubmissionRepositoryUpdateKeepsStatus(t *testing.T) {
	repo := NewMemorySubmissionRepository(memorySeed(time.Now())...)
	edited := time.Now()
	editor := "Admin User"

	err := repo.Update(context.Background(), &models.Submission{
		ID:              "KZ-A-001",
		Title:           "New title",
		FinancialImpact: 60000,
		ApprovalLevel:   models.ApprovalPlantHead,
		Status:          models.StatusApproved,
		LastEditDate:    &edited,
		EditedBy:        &editor,
	})
	require.NoError(t, err)

	found, err := repo.GetByID(context.Background(), "KZ-A-001")
	require.NoError(t, err)
	assert.Equal(t, "New title", found.Title)
	assert.Equal(t, models.StatusPending, found.Status)
	require.NotNil(t, found.EditedBy)
	assert.Equal(t, "Admin User", *found.EditedBy)
}

func TestMemorySubmissionRepositoryDecideOnce(t *testing.T) {
	repo := NewMemorySubmissionRepository(memorySeed(time.Now())...)
	decision := models.SubmissionDecision{Status: models.StatusApproved, DecidedBy: "Plant Head", DecidedAt: time.Now()}

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Decide(context.Background(), "KZ-A-001", decision)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, sql.ErrNoRows)
		}
	}
	assert.Equal(t, 1, succeeded)

	found, err := repo.GetByID(context.Background(), "KZ-A-001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, found.Status)
}

func TestMemorySubmissionRepositorySetImage(t *testing.T) {
	repo := NewMemorySubmissionRepository(memorySeed(time.Now())...)
	require.NoError(t, repo.SetImage(context.Background(), "KZ-B-002", "images/KZ-B-002.png"))
	assert.ErrorIs(t, repo.SetImage(context.Background(), "missing", "x"), sql.ErrNoRows)

	found, err := repo.GetByID(context.Background(), "KZ-B-002")
	require.NoError(t, err)
	require.NotNil(t, found.ImageRef)
	assert.Equal(t, "images/KZ-B-002.png", *found.ImageRef)
}
