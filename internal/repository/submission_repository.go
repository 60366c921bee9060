package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

const submissionColumns = `id, operator_name, department, plant, title, description, expected_benefits,
       financial_impact, submission_date, status, approval_level, image_ref, last_edit_date, edited_by,
       decided_by, decided_at, decision_note`

// SubmissionRepository persists Kaizen submissions in PostgreSQL.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission row.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	const query = `INSERT INTO submissions
	(id, operator_name, department, plant, title, description, expected_benefits, financial_impact,
	 submission_date, status, approval_level, image_ref, last_edit_date, edited_by, decided_by, decided_at, decision_note)
	VALUES (:id, :operator_name, :department, :plant, :title, :description, :expected_benefits, :financial_impact,
	 :submission_date, :status, :approval_level, :image_ref, :last_edit_date, :edited_by, :decided_by, :decided_at, :decision_note)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// GetByID fetches a submission; sql.ErrNoRows is returned untouched when absent.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns every submission, newest first. Filtering happens in memory.
func (r *SubmissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY submission_date DESC, id`
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Update persists an accepted edit. Status and decision columns are never written here.
func (r *SubmissionRepository) Update(ctx context.Context, sub *models.Submission) error {
	const query = `UPDATE submissions SET operator_name = :operator_name, department = :department, plant = :plant,
	title = :title, description = :description, expected_benefits = :expected_benefits,
	financial_impact = :financial_impact, approval_level = :approval_level,
	last_edit_date = :last_edit_date, edited_by = :edited_by
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	return expectAffected(result, "update submission")
}

// Decide records the decision only while the row is still Pending.
// It returns sql.ErrNoRows when the row is missing or already decided.
func (r *SubmissionRepository) Decide(ctx context.Context, id string, decision models.SubmissionDecision) error {
	const query = `UPDATE submissions SET status = :status, decided_by = :decided_by, decided_at = :decided_at,
	decision_note = :decision_note
	WHERE id = :id AND status = 'Pending'`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":            id,
		"status":        decision.Status,
		"decided_by":    decision.DecidedBy,
		"decided_at":    decision.DecidedAt,
		"decision_note": decision.Note,
	})
	if err != nil {
		return fmt.Errorf("decide submission: %w", err)
	}
	return expectAffected(result, "decide submission")
}

// SetImage stores the opaque image reference of a submission.
func (r *SubmissionRepository) SetImage(ctx context.Context, id, ref string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE submissions SET image_ref = $1 WHERE id = $2`, ref, id)
	if err != nil {
		return fmt.Errorf("set submission image: %w", err)
	}
	return expectAffected(result, "set submission image")
}

func expectAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
