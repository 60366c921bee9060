package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// MemorySubmissionRepository keeps submissions in process memory.
// It mirrors SubmissionRepository semantics, including the Pending guard on decisions.
type MemorySubmissionRepository struct {
	mu    sync.RWMutex
	items map[string]models.Submission
}

// NewMemorySubmissionRepository returns a repository preloaded with seed.
func NewMemorySubmissionRepository(seed ...models.Submission) *MemorySubmissionRepository {
	repo := &MemorySubmissionRepository{items: make(map[string]models.Submission, len(seed))}
	for _, sub := range seed {
		repo.items[sub.ID] = cloneSubmission(sub)
	}
	return repo
}

// Create stores a new submission; ids must be unique.
func (r *MemorySubmissionRepository) Create(_ context.Context, sub *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[sub.ID]; exists {
		return fmt.Errorf("create submission: duplicate id %s", sub.ID)
	}
	r.items[sub.ID] = cloneSubmission(*sub)
	return nil
}

// GetByID returns a copy of the stored submission.
func (r *MemorySubmissionRepository) GetByID(_ context.Context, id string) (*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := cloneSubmission(sub)
	return &found, nil
}

// List returns every submission, newest first.
func (r *MemorySubmissionRepository) List(_ context.Context) ([]models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Submission, 0, len(r.items))
	for _, sub := range r.items {
		result = append(result, cloneSubmission(sub))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmissionDate.Equal(result[j].SubmissionDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].SubmissionDate.After(result[j].SubmissionDate)
	})
	return result, nil
}

// Update overwrites the editable fields and the edit stamp.
func (r *MemorySubmissionRepository) Update(_ context.Context, sub *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[sub.ID]
	if !ok {
		return sql.ErrNoRows
	}
	current.OperatorName = sub.OperatorName
	current.Department = sub.Department
	current.Plant = sub.Plant
	current.Title = sub.Title
	current.Description = sub.Description
	current.ExpectedBenefits = sub.ExpectedBenefits
	current.FinancialImpact = sub.FinancialImpact
	current.ApprovalLevel = sub.ApprovalLevel
	current.LastEditDate = copyTime(sub.LastEditDate)
	current.EditedBy = copyString(sub.EditedBy)
	r.items[sub.ID] = current
	return nil
}

// Decide records the decision only while the submission is Pending.
func (r *MemorySubmissionRepository) Decide(_ context.Context, id string, decision models.SubmissionDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok || current.Status != models.StatusPending {
		return sql.ErrNoRows
	}
	decidedAt := decision.DecidedAt
	decidedBy := decision.DecidedBy
	current.Status = decision.Status
	current.DecidedAt = &decidedAt
	current.DecidedBy = &decidedBy
	current.DecisionNote = copyString(decision.Note)
	r.items[id] = current
	return nil
}

// SetImage stores the opaque image reference.
func (r *MemorySubmissionRepository) SetImage(_ context.Context, id, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	current.ImageRef = &ref
	r.items[id] = current
	return nil
}

func cloneSubmission(sub models.Submission) models.Submission {
	sub.ImageRef = copyString(sub.ImageRef)
	sub.LastEditDate = copyTime(sub.LastEditDate)
	sub.EditedBy = copyString(sub.EditedBy)
	sub.DecidedBy = copyString(sub.DecidedBy)
	sub.DecidedAt = copyTime(sub.DecidedAt)
	sub.DecisionNote = copyString(sub.DecisionNote)
	return sub
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
