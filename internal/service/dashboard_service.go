package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

type submissionSource interface {
	Filtered(ctx context.Context, filter models.SubmissionFilter, actor models.Actor) ([]models.Submission, error)
	Present(sub models.Submission) dto.SubmissionResponse
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL       time.Duration
	TrendMonths    int
	TopDepartments int
	TopPlants      int
	RecentLimit    int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Submissions submissionSource
	Aggregation *AggregationEngine
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// DashboardService composes the admin analytics payload from the filtered collection.
type DashboardService struct {
	submissions submissionSource
	aggregation *AggregationEngine
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cfg         DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TrendMonths <= 0 {
		cfg.TrendMonths = DefaultTrendMonths
	}
	if cfg.TopDepartments <= 0 {
		cfg.TopDepartments = 5
	}
	if cfg.TopPlants <= 0 {
		cfg.TopPlants = 4
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	aggregation := params.Aggregation
	if aggregation == nil {
		aggregation = NewAggregationEngine(nil)
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		submissions: params.Submissions,
		aggregation: aggregation,
		cache:       params.Cache,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// Dashboard returns the analytics payload for actor and reports whether it came from cache.
func (s *DashboardService) Dashboard(ctx context.Context, query dto.DashboardQuery, actor models.Actor) (*dto.DashboardResponse, bool, error) {
	now := s.now()
	months := query.Months
	if months <= 0 || months > 24 {
		months = s.cfg.TrendMonths
	}

	scope := "global"
	if !actor.GlobalView() {
		scope = actor.Department
	}
	key := CacheKey("dash", scope, query.Filter, months, now.Format("2006-01-02"))

	var cached dto.DashboardResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	subs, err := s.submissions.Filtered(ctx, query.Filter, actor)
	if err != nil {
		return nil, false, err
	}

	byDepartment := s.aggregation.ByDepartment(subs)
	byPlant := s.aggregation.ByPlant(subs)
	recent := Recent(subs, s.cfg.RecentLimit)
	presented := make([]dto.SubmissionResponse, 0, len(recent))
	for _, sub := range recent {
		presented = append(presented, s.submissions.Present(sub))
	}

	resp := &dto.DashboardResponse{
		Overall:          s.aggregation.Overall(subs),
		ByDepartment:     byDepartment,
		ByPlant:          byPlant,
		MonthlyTrend:     s.aggregation.MonthlyTrend(subs, now, months),
		TopDepartments:   TopByImpact(byDepartment, s.cfg.TopDepartments),
		TopPlants:        TopByImpact(byPlant, s.cfg.TopPlants),
		ApprovalWorkflow: s.aggregation.ApprovalWorkflow(subs),
		Recent:           presented,
		Scope:            scope,
		GeneratedAt:      now.UTC(),
	}
	s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	s.logger.Debug("dashboard composed", zap.String("scope", scope), zap.Int("submissions", len(subs)))
	return resp, false, nil
}
