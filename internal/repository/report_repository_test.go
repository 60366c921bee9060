package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

var reportJobRowColumns = []string{"id", "type", "params", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message"}

func selectReportJobs(where string) string {
	return regexp.QuoteMeta("SELECT " + reportJobColumns + " FROM report_jobs WHERE " + where)
}

func newReportRepo(t *testing.T) (*ReportRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestReportRepositoryCreateStampsDefaults(t *testing.T) {
	repo, mock := newReportRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs")).
		WithArgs(sqlmock.AnyArg(), "submissions", sqlmock.AnyArg(), "QUEUED", 0, nil, "admin-1", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReportJob{
		Type:      models.ReportTypeSubmissions,
		Params:    models.ReportJobParams{Format: models.ReportFormatXLSX, Filter: models.SubmissionFilter{Status: "Pending"}},
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryGetDecodesFilterSnapshot(t *testing.T) {
	repo, mock := newReportRepo(t)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow("job-7", "analytics", `{"format":"pdf","filter":{"plant":"Chennai","dateWindow":"30d"},"department":"Quality"}`,
			"PROCESSING", 10, nil, "qa-lead", time.Now(), nil, nil)
	mock.ExpectQuery(selectReportJobs("id = $1")).WithArgs("job-7").WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-7")
	require.NoError(t, err)
	assert.Equal(t, models.ReportTypeAnalytics, job.Type)
	assert.Equal(t, models.ReportFormatPDF, job.Params.Format)
	assert.Equal(t, "Chennai", job.Params.Filter.Plant)
	assert.Equal(t, models.DateWindow("30d"), job.Params.Filter.DateWindow)

	scope := job.Requester()
	assert.Equal(t, models.RoleDepartmentAdmin, scope.Role)
	assert.Equal(t, "Quality", scope.Department)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryGetMissing(t *testing.T) {
	repo, mock := newReportRepo(t)
	mock.ExpectQuery(selectReportJobs("id = $1")).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReportRepositoryUpdateBuildsSetClause(t *testing.T) {
	repo, mock := newReportRepo(t)

	failed := models.ReportStatusFailed
	msg := "render failed"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, error_message = $2 WHERE id = $3")).
		WithArgs(failed, msg, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateReportJobParams{Status: &failed, ErrorMessage: &msg}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateEdgeCases(t *testing.T) {
	repo, mock := newReportRepo(t)

	// nothing to change issues no statement
	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateReportJobParams{}))

	progress := 50
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET progress = $1 WHERE id = $2")).
		WithArgs(progress, "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), "gone", UpdateReportJobParams{Progress: &progress})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListQueuedDefaultsLimit(t *testing.T) {
	repo, mock := newReportRepo(t)

	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow("job-1", "analytics", `{"format":"pdf","filter":{}}`, "QUEUED", 0, nil, "admin-1", time.Now(), nil, nil).
		AddRow("job-2", "submissions", `{"format":"csv","filter":{}}`, "QUEUED", 0, nil, "admin-1", time.Now(), nil, nil)
	mock.ExpectQuery(selectReportJobs("status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListFinishedBefore(t *testing.T) {
	repo, mock := newReportRepo(t)

	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(reportJobRowColumns).
		AddRow("job-1", "submissions", `{"format":"csv","filter":{"plant":"Pune"}}`, "FINISHED", 100, "/api/v1/export/token",
			"admin-1", cutoff.Add(-48*time.Hour), cutoff.Add(-25*time.Hour), nil)
	mock.ExpectQuery(selectReportJobs("status = 'FINISHED' AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(cutoff, 50).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].ResultURL)
	assert.True(t, jobs[0].Status.Terminal())
	require.NoError(t, mock.ExpectationsWereMet())
}
