package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

// MemoryReportRepository keeps report jobs in process memory for the memory storage driver.
type MemoryReportRepository struct {
	mu   sync.RWMutex
	jobs map[string]models.ReportJob
}

// NewMemoryReportRepository constructs an empty job store.
func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{jobs: make(map[string]models.ReportJob)}
}

// Create stores a job with defaults applied.
func (r *MemoryReportRepository) Create(_ context.Context, job *models.ReportJob) error {
	prepareReportJob(job)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = *job
	return nil
}

// GetByID returns a copy of the stored job.
func (r *MemoryReportRepository) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &job, nil
}

// Update applies the provided changes.
func (r *MemoryReportRepository) Update(_ context.Context, id string, params UpdateReportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = copyString(params.ResultURL)
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = copyString(params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		job.FinishedAt = copyTime(params.FinishedAt)
	}
	r.jobs[id] = job
	return nil
}

// ListQueued returns queued jobs oldest first.
func (r *MemoryReportRepository) ListQueued(_ context.Context, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.collect(limit, func(job models.ReportJob) bool {
		return job.Status == models.ReportStatusQueued
	}, func(a, b models.ReportJob) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

// ListFinishedBefore returns finished jobs completed before cutoff.
func (r *MemoryReportRepository) ListFinishedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.collect(limit, func(job models.ReportJob) bool {
		return job.Status == models.ReportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff)
	}, func(a, b models.ReportJob) bool { return a.FinishedAt.Before(*b.FinishedAt) }), nil
}

func (r *MemoryReportRepository) collect(limit int, keep func(models.ReportJob) bool, less func(a, b models.ReportJob) bool) []models.ReportJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.ReportJob, 0)
	for _, job := range r.jobs {
		if keep(job) {
			result = append(result, job)
		}
	}
	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
