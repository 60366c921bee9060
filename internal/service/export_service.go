package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kaizen-portal-api/internal/dto"
	"github.com/noah-isme/kaizen-portal-api/internal/models"
	"github.com/noah-isme/kaizen-portal-api/pkg/export"
	"github.com/noah-isme/kaizen-portal-api/pkg/storage"
)

const (
	submissionsSheet = "Submissions"
	analyticsSheet   = "Analytics"
	formDateLayout   = "02 Jan 2006"
)

var submissionHeaders = []string{
	"ID", "Submitted", "Operator", "Department", "Plant", "Title", "Description",
	"Expected Benefits", "Financial Impact", "Status", "Approval Level", "Last Edited", "Decided By",
}

var analyticsHeaders = []string{"Group", "Name", "Total", "Pending", "Approved", "Rejected", "Financial Impact"}

type submissionReader interface {
	Get(ctx context.Context, id string, actor models.Actor) (*dto.SubmissionResponse, error)
	Filtered(ctx context.Context, filter models.SubmissionFilter, actor models.Actor) ([]models.Submission, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (io.ReadSeekCloser, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type tableRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type formRenderer interface {
	RenderForm(doc export.FormDocument) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportRenderers lets callers swap individual renderers; nil fields use the defaults.
type ExportRenderers struct {
	CSV  csvRenderer
	PDF  tableRenderer
	XLSX tableRenderer
	Form formRenderer
}

// ExportService renders printable forms and report files.
type ExportService struct {
	submissions submissionReader
	aggregation *AggregationEngine
	storage     fileStorage
	signer      *storage.SignedURLSigner
	renderers   ExportRenderers
	logger      *zap.Logger
	cfg         ExportConfig
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(submissions submissionReader, aggregation *AggregationEngine, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, renderers ExportRenderers) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregation == nil {
		aggregation = NewAggregationEngine(nil)
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	pdf := export.NewPDFExporter()
	if renderers.CSV == nil {
		renderers.CSV = export.NewCSVExporter()
	}
	if renderers.PDF == nil {
		renderers.PDF = pdf
	}
	if renderers.XLSX == nil {
		renderers.XLSX = export.NewXLSXExporter()
	}
	if renderers.Form == nil {
		renderers.Form = pdf
	}
	return &ExportService{
		submissions: submissions,
		aggregation: aggregation,
		storage:     store,
		signer:      signer,
		renderers:   renderers,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// PrintableForm renders the paper Kaizen form for one submission.
func (s *ExportService) PrintableForm(ctx context.Context, id string, actor models.Actor) ([]byte, string, error) {
	sub, err := s.submissions.Get(ctx, id, actor)
	if err != nil {
		return nil, "", err
	}
	doc := export.FormDocument{
		Title:    "Kaizen Improvement Form",
		Subtitle: sub.ID,
		Fields: []export.FormField{
			{Label: "Kaizen ID", Value: sub.ID},
			{Label: "Submission Date", Value: sub.SubmissionDate.Format(formDateLayout)},
			{Label: "Operator Name", Value: Sanitize(sub.OperatorName)},
			{Label: "Department", Value: sub.Department},
			{Label: "Plant", Value: sub.Plant},
			{Label: "Kaizen Title", Value: Sanitize(sub.Title)},
			{Label: "Description", Value: Sanitize(sub.Description)},
			{Label: "Expected Benefits", Value: Sanitize(sub.ExpectedBenefits)},
			{Label: "Financial Impact", Value: export.FormatINR(sub.FinancialImpact)},
			{Label: "Approval Level", Value: fmt.Sprintf("%s (%s)", sub.RequiredApprovalLevel, ThresholdDescription(sub.RequiredApprovalLevel))},
			{Label: "Status", Value: string(sub.Status)},
		},
		Signatures: []string{"Operator Signature", "Supervisor Signature", "Approval Signature"},
		Footer:     "Generated on " + s.now().Format(formDateLayout),
	}
	payload, err := s.renderers.Form.RenderForm(doc)
	if err != nil {
		return nil, "", err
	}
	return payload, fmt.Sprintf("kaizen_%s.pdf", sanitizeFilename(sub.ID)), nil
}

// Generate builds the dataset for job, renders it and stores the file behind a signed URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	subs, err := s.submissions.Filtered(ctx, job.Params.Filter, job.Requester())
	if err != nil {
		return nil, err
	}

	var (
		dataset export.Dataset
		title   string
		sheet   string
	)
	switch job.Type {
	case models.ReportTypeSubmissions:
		dataset, title, sheet = SubmissionsDataset(subs), "Kaizen Submissions", submissionsSheet
	case models.ReportTypeAnalytics:
		dataset, title, sheet = s.AnalyticsDataset(subs), "Kaizen Analytics", analyticsSheet
	default:
		return nil, fmt.Errorf("unsupported report type %s", job.Type)
	}
	if job.Params.Department != "" {
		title += " - " + job.Params.Department
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.renderers.CSV.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.renderers.PDF.Render(dataset, title)
	case models.ReportFormatXLSX:
		payload, err = s.renderers.XLSX.Render(dataset, sheet)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("report rendered",
		zap.String("job_id", job.ID),
		zap.String("format", string(job.Params.Format)),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (io.ReadSeekCloser, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// SubmissionsDataset flattens submissions into one export row each.
func SubmissionsDataset(subs []models.Submission) export.Dataset {
	rows := make([]map[string]string, 0, len(subs))
	for _, sub := range subs {
		row := map[string]string{
			"ID":                sub.ID,
			"Submitted":         sub.SubmissionDate.Format("2006-01-02"),
			"Operator":          Sanitize(sub.OperatorName),
			"Department":        sub.Department,
			"Plant":             sub.Plant,
			"Title":             Sanitize(sub.Title),
			"Description":       Sanitize(sub.Description),
			"Expected Benefits": Sanitize(sub.ExpectedBenefits),
			"Financial Impact":  export.FormatINR(sub.FinancialImpact),
			"Status":            string(sub.Status),
			"Approval Level":    string(sub.ApprovalLevel),
		}
		if sub.LastEditDate != nil {
			row["Last Edited"] = sub.LastEditDate.Format("2006-01-02")
		}
		if sub.DecidedBy != nil {
			row["Decided By"] = *sub.DecidedBy
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: submissionHeaders, Rows: rows}
}

// AnalyticsDataset summarises subs by overall, department, plant and approval tier.
func (s *ExportService) AnalyticsDataset(subs []models.Submission) export.Dataset {
	overall := s.aggregation.Overall(subs)
	rows := []map[string]string{
		groupRow("Overall", models.GroupSummary{
			Key:             "All submissions",
			Total:           overall.Total,
			Pending:         overall.Pending,
			Approved:        overall.Approved,
			Rejected:        overall.Rejected,
			FinancialImpact: overall.FinancialImpact,
		}),
	}
	for _, group := range s.aggregation.ByDepartment(subs) {
		rows = append(rows, groupRow("Department", group))
	}
	for _, group := range s.aggregation.ByPlant(subs) {
		rows = append(rows, groupRow("Plant", group))
	}
	for _, tier := range s.aggregation.ApprovalWorkflow(subs) {
		rows = append(rows, map[string]string{
			"Group":   "Approval Level",
			"Name":    fmt.Sprintf("%s (%s)", tier.Level, tier.Threshold),
			"Total":   strconv.Itoa(tier.Total),
			"Pending": strconv.Itoa(tier.Pending),
		})
	}
	return export.Dataset{Headers: analyticsHeaders, Rows: rows}
}

func groupRow(group string, summary models.GroupSummary) map[string]string {
	return map[string]string{
		"Group":            group,
		"Name":             summary.Key,
		"Total":            strconv.Itoa(summary.Total),
		"Pending":          strconv.Itoa(summary.Pending),
		"Approved":         strconv.Itoa(summary.Approved),
		"Rejected":         strconv.Itoa(summary.Rejected),
		"Financial Impact": export.FormatINR(summary.FinancialImpact),
	}
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	scope := "all"
	if job.Params.Department != "" {
		scope = strings.ToLower(job.Params.Department)
	}
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("reports/kaizen_%s_%s_%s.%s", job.Type, sanitizeFilename(scope), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
