package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

var submissionRowColumns = []string{"id", "operator_name", "department", "plant", "title", "description", "expected_benefits",
	"financial_impact", "submission_date", "status", "approval_level", "image_ref", "last_edit_date", "edited_by",
	"decided_by", "decided_at", "decision_note"}

func newSubmissionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubmissionRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	sub := &models.Submission{
		ID:               "KZ-LVN2C8A0-001ABCDE",
		OperatorName:     "Ravi",
		Department:       "Production",
		Plant:            "Pune",
		Title:            "Quick clamps",
		Description:      "Swap bolts for clamps",
		ExpectedBenefits: "Faster changeover",
		FinancialImpact:  85000,
		SubmissionDate:   now,
		Status:           models.StatusPending,
		ApprovalLevel:    models.ApprovalPlantHead,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submissions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), sub))

	rows := sqlmock.NewRows(submissionRowColumns).
		AddRow(sub.ID, "Ravi", "Production", "Pune", "Quick clamps", "Swap bolts for clamps", "Faster changeover",
			int64(85000), now, "Pending", "Plant Head", nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, operator_name")).
		WithArgs(sub.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, sub.ID, found.ID)
	require.Equal(t, models.ApprovalPlantHead, found.ApprovalLevel)
	require.Nil(t, found.LastEditDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryList(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(submissionRowColumns).
		AddRow("KZ-B-002", "Asha", "Quality", "Nashik", "t", "d", "b", int64(150000), now, "Approved", "Operations Head", nil, nil, nil, "Admin", now, nil).
		AddRow("KZ-A-001", "Ravi", "Production", "Pune", "t", "d", "b", int64(50000), now.Add(-time.Hour), "Pending", "Plant Head", nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions ORDER BY submission_date DESC, id")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "KZ-B-002", list[0].ID)
	require.NotNil(t, list[0].DecidedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET operator_name")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Submission{ID: "KZ-X-1"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryDecideOnlyWhilePending(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	now := time.Now()
	note := "good idea"
	decision := models.SubmissionDecision{Status: models.StatusApproved, DecidedBy: "Plant Head Pune", DecidedAt: now, Note: &note}

	mock.ExpectExec(regexp.QuoteMeta("AND status = 'Pending'")).
		WithArgs("Approved", "Plant Head Pune", now, "good idea", "KZ-A-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Decide(context.Background(), "KZ-A-001", decision))

	mock.ExpectExec(regexp.QuoteMeta("AND status = 'Pending'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Decide(context.Background(), "KZ-A-001", decision)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositorySetImage(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET image_ref = $1 WHERE id = $2")).
		WithArgs("images/KZ-A-001.jpg", "KZ-A-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetImage(context.Background(), "KZ-A-001", "images/KZ-A-001.jpg"))
	require.NoError(t, mock.ExpectationsWereMet())
}
