package service

import (
	"time"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
)

type demoRow struct {
	operator, department, plant, title, description, benefits string
	amount                                                    int64
	daysAgo                                                   int
	status                                                    models.SubmissionStatus
}

var demoRows = []demoRow{
	{"Rajesh Kumar", "Production", "Pune", "Reduce waste in assembly line", "Apply lean principles to cut material waste on line 3 by 15%", "Lower scrap cost and cleaner work area", 75000, 3, models.StatusPending},
	{"Priya Sharma", "Quality", "Chennai", "Poka-yoke for connector orientation", "Add a fixture that prevents reversed connector insertion", "Zero orientation defects at final inspection", 120000, 12, models.StatusApproved},
	{"Amit Patil", "Maintenance", "Nashik", "Predictive lubrication schedule", "Move compressor lubrication from fixed interval to vibration based triggers", "Fewer breakdowns and lower oil consumption", 260000, 25, models.StatusPending},
	{"Sunita Deshmukh", "Engineering", "Aurangabad", "Quick die change trolley", "Design a roller trolley so press dies change without the overhead crane", "Changeover time down from 45 to 12 minutes", 540000, 41, models.StatusApproved},
	{"Vikram Singh", "Production", "Chennai", "Kanban for fasteners", "Two-bin kanban at each station for M6 and M8 fasteners", "No line stops for missing fasteners", 48000, 58, models.StatusRejected},
	{"Meena Iyer", "HR", "Pune", "Shift handover checklist", "Standard handover sheet shared between outgoing and incoming supervisors", "Fewer missed safety notes between shifts", 15000, 70, models.StatusApproved},
	{"Karthik Rao", "Finance", "Pune", "Digital scrap weighing", "Connect the scrap scale to the plant network so weights post automatically", "Accurate scrap recovery accounting", 180000, 96, models.StatusPending},
	{"Anjali Kulkarni", "Quality", "Aurangabad", "Gauge calibration tracker", "Colour tags and a shared tracker for gauge calibration due dates", "No expired gauges on the shop floor", 32000, 130, models.StatusApproved},
	{"Suresh Reddy", "Maintenance", "Pune", "Compressed air leak hunt", "Monthly ultrasonic leak survey with tagged repairs", "Lower compressor energy bill", 1250000, 160, models.StatusApproved},
}

// DemoSubmissions returns a fixed sample data set dated relative to now.
func DemoSubmissions(now time.Time) []models.Submission {
	subs := make([]models.Submission, 0, len(demoRows))
	seq := &AtomicSequence{}
	for _, row := range demoRows {
		date := now.AddDate(0, 0, -row.daysAgo)
		ids := NewIdentifierService(
			WithSequence(seq),
			WithIdentifierClock(func() time.Time { return date }),
			WithRandomSource(func(n int) int { return row.daysAgo % n }),
		)
		sub := models.Submission{
			ID:               ids.Generate(),
			OperatorName:     row.operator,
			Department:       row.department,
			Plant:            row.plant,
			Title:            row.title,
			Description:      row.description,
			ExpectedBenefits: row.benefits,
			FinancialImpact:  row.amount,
			SubmissionDate:   date,
			Status:           row.status,
			ApprovalLevel:    ApprovalLevelOf(row.amount),
		}
		if row.status != models.StatusPending {
			decidedAt := date.Add(48 * time.Hour)
			decidedBy := "Demo Reviewer"
			sub.DecidedAt = &decidedAt
			sub.DecidedBy = &decidedBy
		}
		subs = append(subs, sub)
	}
	return subs
}
