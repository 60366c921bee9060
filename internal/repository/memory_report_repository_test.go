package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

func TestMemoryReportRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	job := &models.ReportJob{Type: models.ReportTypeSubmissions, CreatedBy: "admin-1", Params: models.ReportJobParams{Format: models.ReportFormatCSV}}
	require.NoError(t, repo.Create(ctx, job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ReportStatusQueued, job.Status)

	queued, err := repo.ListQueued(ctx, 0)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	finished := time.Now().Add(-2 * time.Hour)
	status := models.ReportStatusFinished
	url := "/api/v1/export/token"
	require.NoError(t, repo.Update(ctx, job.ID, UpdateReportJobParams{Status: &status, ResultURL: &url, FinishedAt: &finished}))

	stored, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, stored.Status)
	require.NotNil(t, stored.ResultURL)
	assert.Equal(t, url, *stored.ResultURL)

	old, err := repo.ListFinishedBefore(ctx, time.Now().Add(-time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, old, 1)

	none, err := repo.ListFinishedBefore(ctx, time.Now().Add(-3*time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, repo.Update(ctx, "missing", UpdateReportJobParams{Status: &status}), sql.ErrNoRows)
}
