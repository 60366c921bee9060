package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType selects which dataset a report job renders.
type ReportType string

const (
	// ReportTypeSubmissions lists the filtered submissions row by row.
	ReportTypeSubmissions ReportType = "submissions"
	// ReportTypeAnalytics renders the department and plant rollups.
	ReportTypeAnalytics ReportType = "analytics"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	return t == ReportTypeSubmissions || t == ReportTypeAnalytics
}

// ReportFormat is the file format a report is rendered in.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatXLSX ReportFormat = "xlsx"
)

var reportContentTypes = map[ReportFormat]string{
	ReportFormatCSV:  "text/csv; charset=utf-8",
	ReportFormatPDF:  "application/pdf",
	ReportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Valid reports whether f can be rendered.
func (f ReportFormat) Valid() bool {
	_, ok := reportContentTypes[f]
	return ok
}

// ContentType is the MIME type served for downloads; unknown formats fall back to octet-stream.
func (f ReportFormat) ContentType() string {
	if ct, ok := reportContentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ReportStatus tracks a job from enqueue to its terminal state.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// Terminal is true once no worker will touch the job again.
func (s ReportStatus) Terminal() bool {
	return s == ReportStatusFinished || s == ReportStatusFailed
}

// ReportJob is one asynchronous export request over the submission collection.
type ReportJob struct {
	ID           string          `db:"id" json:"id"`
	Type         ReportType      `db:"type" json:"type"`
	Params       ReportJobParams `db:"params" json:"params"`
	Status       ReportStatus    `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
}

// Requester rebuilds the scope the job was requested under. Jobs without a
// department snapshot were requested by a super admin.
func (j ReportJob) Requester() Actor {
	if j.Params.Department == "" {
		return Actor{ID: j.CreatedBy, Role: RoleSuperAdmin}
	}
	return Actor{ID: j.CreatedBy, Role: RoleDepartmentAdmin, Department: j.Params.Department}
}

// ReportJobParams is the filter snapshot stored in the params JSONB column.
type ReportJobParams struct {
	Format     ReportFormat     `json:"format"`
	Filter     SubmissionFilter `json:"filter"`
	Department string           `json:"department,omitempty"`
}

// Value implements driver.Valuer.
func (p ReportJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal report job params: %w", err)
	}
	return data, nil
}

// Scan implements sql.Scanner; NULL and empty payloads decode to the zero value.
func (p *ReportJobParams) Scan(value interface{}) error {
	*p = ReportJobParams{}
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReportJobParams", value)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal report job params: %w", err)
	}
	return nil
}
