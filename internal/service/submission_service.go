package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
	"github.com/noah-isme/kaizen-portal-api/pkg/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// DefaultImageMaxBytes caps an attachment after client side compression.
	DefaultImageMaxBytes int64 = 3 << 20
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type submissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	Update(ctx context.Context, sub *models.Submission) error
	Decide(ctx context.Context, id string, decision models.SubmissionDecision) error
	SetImage(ctx context.Context, id, ref string) error
}

// SubmissionConfig tunes the workflow.
type SubmissionConfig struct {
	// RestampApprovalLevel recomputes the stored level when an edit changes the amount.
	RestampApprovalLevel bool
	ImageMaxBytes        int64
}

// SubmissionOption customises a SubmissionService.
type SubmissionOption func(*SubmissionService)

// WithImageStore enables image attachments.
func WithImageStore(store storage.ObjectStore) SubmissionOption {
	return func(s *SubmissionService) { s.images = store }
}

// WithSubmissionCache invalidates dashboard payloads on every write.
func WithSubmissionCache(cache *CacheService) SubmissionOption {
	return func(s *SubmissionService) { s.cache = cache }
}

// WithSubmissionMetrics records domain counters.
func WithSubmissionMetrics(metrics *MetricsService) SubmissionOption {
	return func(s *SubmissionService) { s.metrics = metrics }
}

// WithSubmissionClock overrides the wall clock.
func WithSubmissionClock(now func() time.Time) SubmissionOption {
	return func(s *SubmissionService) {
		if now != nil {
			s.now = now
		}
	}
}

// SubmissionService runs the create, edit, decide and attach flows.
type SubmissionService struct {
	repo      submissionStore
	catalog   *CatalogService
	validator *SubmissionValidator
	ids       *IdentifierService
	lifecycle LifecyclePolicy
	images    storage.ObjectStore
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       SubmissionConfig
	now       func() time.Time
}

// NewSubmissionService wires the workflow over repo.
func NewSubmissionService(repo submissionStore, catalog *CatalogService, validator *SubmissionValidator, ids *IdentifierService, lifecycle LifecyclePolicy, cfg SubmissionConfig, logger *zap.Logger, opts ...SubmissionOption) *SubmissionService {
	if catalog == nil {
		catalog = NewCatalogService()
	}
	if validator == nil {
		validator = NewSubmissionValidator(nil)
	}
	if ids == nil {
		ids = NewIdentifierService()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ImageMaxBytes <= 0 {
		cfg.ImageMaxBytes = DefaultImageMaxBytes
	}
	svc := &SubmissionService{
		repo:      repo,
		catalog:   catalog,
		validator: validator,
		ids:       ids,
		lifecycle: lifecycle,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create validates an operator form and stores it as a Pending submission.
func (s *SubmissionService) Create(ctx context.Context, req dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error) {
	draft, err := s.checkDraft(req.Draft())
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &models.Submission{
		ID:               s.ids.Generate(),
		OperatorName:     draft.OperatorName,
		Department:       draft.Department,
		Plant:            draft.Plant,
		Title:            draft.Title,
		Description:      draft.Description,
		ExpectedBenefits: draft.ExpectedBenefits,
		FinancialImpact:  *draft.FinancialImpact,
		SubmissionDate:   now,
		Status:           models.StatusPending,
		ApprovalLevel:    ApprovalLevelOf(*draft.FinancialImpact),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}

	s.metrics.SubmissionCreated(sub.ApprovalLevel)
	s.cache.Invalidate(ctx, DashboardCachePattern)
	s.logger.Info("submission created",
		zap.String("id", sub.ID),
		zap.String("department", sub.Department),
		zap.String("approval_level", string(sub.ApprovalLevel)),
	)
	resp := s.present(*sub, now)
	return &resp, nil
}

// Get returns one submission visible to actor.
func (s *SubmissionService) Get(ctx context.Context, id string, actor models.Actor) (*dto.SubmissionResponse, error) {
	sub, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	resp := s.present(*sub, s.now())
	return &resp, nil
}

// List filters the actor's visible submissions and returns one page, newest first.
func (s *SubmissionService) List(ctx context.Context, query dto.SubmissionQuery, actor models.Actor) (*dto.SubmissionListResponse, error) {
	now := s.now()
	filtered, err := s.filtered(ctx, query.Filter, actor, now)
	if err != nil {
		return nil, err
	}

	page, size := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	start := len(filtered)
	if page-1 < len(filtered)/size+1 {
		start = min((page-1)*size, len(filtered))
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	items := make([]dto.SubmissionResponse, 0, end-start)
	for _, sub := range filtered[start:end] {
		items = append(items, s.present(sub, now))
	}
	return &dto.SubmissionListResponse{
		Items:      items,
		Pagination: models.Pagination{Page: page, PageSize: size, TotalCount: len(filtered)},
	}, nil
}

// Filtered returns every submission visible to actor that matches filter.
func (s *SubmissionService) Filtered(ctx context.Context, filter models.SubmissionFilter, actor models.Actor) ([]models.Submission, error) {
	return s.filtered(ctx, filter, actor, s.now())
}

// Update replaces the editable fields while the edit window is open.
// Status and decision fields are never touched by an edit.
func (s *SubmissionService) Update(ctx context.Context, id string, req dto.UpdateSubmissionRequest, actor models.Actor) (*dto.SubmissionResponse, error) {
	sub, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.lifecycle.CheckEditable(*sub, now); err != nil {
		s.metrics.EditRejected()
		s.logger.Info("edit refused", zap.String("id", id), zap.Int("days_since", s.lifecycle.DaysSince(sub.SubmissionDate, now)))
		return nil, err
	}

	draft, err := s.checkDraft(req.Draft())
	if err != nil {
		return nil, err
	}
	if !actor.GlobalView() && draft.Department != actor.Department {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "department admins cannot move submissions to another department")
	}

	editor := actor.DisplayName()
	sub.OperatorName = draft.OperatorName
	sub.Department = draft.Department
	sub.Plant = draft.Plant
	sub.Title = draft.Title
	sub.Description = draft.Description
	sub.ExpectedBenefits = draft.ExpectedBenefits
	sub.FinancialImpact = *draft.FinancialImpact
	if s.cfg.RestampApprovalLevel {
		sub.ApprovalLevel = ApprovalLevelOf(sub.FinancialImpact)
	}
	sub.LastEditDate = &now
	sub.EditedBy = &editor

	if err := s.repo.Update(ctx, sub); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
	}

	s.cache.Invalidate(ctx, DashboardCachePattern)
	s.logger.Info("submission edited", zap.String("id", id), zap.String("edited_by", editor))
	resp := s.present(*sub, now)
	return &resp, nil
}

// Decide moves a Pending submission to Approved or Rejected exactly once.
func (s *SubmissionService) Decide(ctx context.Context, id string, req dto.DecisionRequest, actor models.Actor) (*dto.SubmissionResponse, error) {
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid decision"),
			[]string{"Decision must be Approved or Rejected"})
	}
	sub, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sub.Status, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrAlreadyDecided, fmt.Sprintf("submission already %s", strings.ToLower(string(sub.Status))))
	}

	now := s.now()
	decision := models.SubmissionDecision{
		Status:    req.Status,
		DecidedBy: actor.DisplayName(),
		DecidedAt: now,
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		decision.Note = &note
	}
	if err := s.repo.Decide(ctx, id, decision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyDecided, "submission was decided concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	sub.Status = decision.Status
	sub.DecidedBy = &decision.DecidedBy
	sub.DecidedAt = &now
	sub.DecisionNote = decision.Note

	s.metrics.DecisionRecorded(decision.Status)
	s.cache.Invalidate(ctx, DashboardCachePattern)
	s.logger.Info("submission decided",
		zap.String("id", id),
		zap.String("status", string(decision.Status)),
		zap.String("decided_by", decision.DecidedBy),
	)
	resp := s.present(*sub, now)
	return &resp, nil
}

// AttachImage stores an already compressed JPEG, PNG or WebP image for a submission.
// Only a Pending submission inside the edit window without an image accepts one;
// the upload route is public, so an attached image is never replaced.
func (s *SubmissionService) AttachImage(ctx context.Context, id string, data []byte) (*dto.ImageUploadResponse, error) {
	if s.images == nil {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "image uploads are disabled")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "image is empty")
	}
	if int64(len(data)) > s.cfg.ImageMaxBytes {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("image exceeds %d bytes", s.cfg.ImageMaxBytes))
	}

	mtype := mimetype.Detect(data)
	contentType := strings.Split(mtype.String(), ";")[0]
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, fmt.Sprintf("unsupported image type %s", contentType))
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err)
	}
	now := s.now()
	if err := s.lifecycle.CheckEditable(*sub, now); err != nil {
		s.logger.Info("image refused", zap.String("id", id), zap.Int("days_since", s.lifecycle.DaysSince(sub.SubmissionDate, now)))
		return nil, err
	}
	if sub.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("submission already %s", strings.ToLower(string(sub.Status))))
	}
	if sub.ImageRef != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission already has an image")
	}

	ref, err := s.images.Put(ctx, "images/"+id+ext, contentType, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}
	if err := s.repo.SetImage(ctx, id, ref); err != nil {
		return nil, s.notFoundOr(err)
	}
	s.logger.Info("image attached", zap.String("id", id), zap.String("content_type", contentType), zap.Int("bytes", len(data)))
	return &dto.ImageUploadResponse{
		ID:          id,
		ImageRef:    ref,
		ContentType: contentType,
		Size:        len(data),
		UploadedAt:  now,
	}, nil
}

// Present decorates sub with its derived read-model fields.
func (s *SubmissionService) Present(sub models.Submission) dto.SubmissionResponse {
	return s.present(sub, s.now())
}

// NormalizeFilter canonicalises filter values and rejects unknown ones.
func (s *SubmissionService) NormalizeFilter(filter models.SubmissionFilter) (models.SubmissionFilter, error) {
	var problems []string
	if constrained(filter.Status) && !models.SubmissionStatus(filter.Status).Valid() {
		problems = append(problems, fmt.Sprintf("Unknown status: %s", filter.Status))
	}
	if constrained(filter.ApprovalLevel) && !models.ApprovalLevel(filter.ApprovalLevel).Valid() {
		problems = append(problems, fmt.Sprintf("Unknown approval level: %s", filter.ApprovalLevel))
	}
	if constrained(filter.Department) {
		if name, ok := s.catalog.NormalizeDepartment(filter.Department); ok {
			filter.Department = name
		} else {
			problems = append(problems, fmt.Sprintf("Unknown department: %s", filter.Department))
		}
	}
	if constrained(filter.Plant) {
		if name, ok := s.catalog.NormalizePlant(filter.Plant); ok {
			filter.Plant = name
		} else {
			problems = append(problems, fmt.Sprintf("Unknown plant: %s", filter.Plant))
		}
	}
	if !ValidAmountRange(filter.AmountRange) {
		problems = append(problems, fmt.Sprintf("Unknown amount range: %s", filter.AmountRange))
	}
	if !ValidDateWindow(filter.DateWindow) {
		problems = append(problems, fmt.Sprintf("Unknown date window: %s", filter.DateWindow))
	}
	if len(problems) > 0 {
		return filter, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid filter"), problems)
	}
	return filter, nil
}

// ScopeFilter pins a department admin to their own department.
func ScopeFilter(filter models.SubmissionFilter, actor models.Actor) models.SubmissionFilter {
	filter.GlobalView = actor.GlobalView()
	if !filter.GlobalView {
		filter.Department = actor.Department
	}
	return filter
}

func (s *SubmissionService) filtered(ctx context.Context, filter models.SubmissionFilter, actor models.Actor, now time.Time) ([]models.Submission, error) {
	filter, err := s.NormalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	subs, err := s.repo.List(ctx)
	s.metrics.ObserveDBQuery("submissions_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return FilterSubmissions(subs, ScopeFilter(filter, actor), now), nil
}

// checkDraft trims, validates and canonicalises department and plant.
func (s *SubmissionService) checkDraft(raw models.SubmissionDraft) (models.SubmissionDraft, error) {
	draft := TrimDraft(raw)
	result := s.validator.Validate(draft)
	problems := append([]string(nil), result.Errors...)

	if draft.Department != "" {
		if name, ok := s.catalog.NormalizeDepartment(draft.Department); ok {
			draft.Department = name
		} else {
			problems = append(problems, fmt.Sprintf("Unknown department: %s", draft.Department))
		}
	}
	if draft.Plant != "" {
		if name, ok := s.catalog.NormalizePlant(draft.Plant); ok {
			draft.Plant = name
		} else {
			problems = append(problems, fmt.Sprintf("Unknown plant: %s", draft.Plant))
		}
	}
	if len(problems) > 0 {
		return draft, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "submission is invalid"), problems)
	}
	return draft, nil
}

func (s *SubmissionService) load(ctx context.Context, id string, actor models.Actor) (*models.Submission, error) {
	if !ValidateID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	start := time.Now()
	sub, err := s.repo.GetByID(ctx, id)
	s.metrics.ObserveDBQuery("submissions_get", time.Since(start))
	if err != nil {
		return nil, s.notFoundOr(err)
	}
	if !actor.GlobalView() && sub.Department != actor.Department {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	return sub, nil
}

func (s *SubmissionService) notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
}

func (s *SubmissionService) present(sub models.Submission, now time.Time) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		Submission:            sub,
		RequiredApprovalLevel: RequiredApprovalLevel(sub),
		Editable:              s.lifecycle.IsEditable(sub.SubmissionDate, now),
		DaysSinceSubmission:   s.lifecycle.DaysSince(sub.SubmissionDate, now),
		SubmittedAgo:          s.lifecycle.RelativeTime(sub.SubmissionDate, now),
	}
}
