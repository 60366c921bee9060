package models

// GroupSummary aggregates submissions sharing a department or plant.
type GroupSummary struct {
	Key             string `json:"key"`
	Total           int    `json:"total"`
	Pending         int    `json:"pending"`
	Approved        int    `json:"approved"`
	Rejected        int    `json:"rejected"`
	FinancialImpact int64  `json:"financialImpact"`
}

// MonthSummary aggregates submissions of one calendar month.
type MonthSummary struct {
	Label           string `json:"label"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	Total           int    `json:"total"`
	Pending         int    `json:"pending"`
	Approved        int    `json:"approved"`
	Rejected        int    `json:"rejected"`
	FinancialImpact int64  `json:"financialImpact"`
}

// OverallSummary aggregates the whole collection.
type OverallSummary struct {
	Total           int     `json:"total"`
	Pending         int     `json:"pending"`
	Approved        int     `json:"approved"`
	Rejected        int     `json:"rejected"`
	FinancialImpact int64   `json:"financialImpact"`
	ApprovalRate    float64 `json:"approvalRate"`
}

// ApprovalTierSummary counts submissions routed to one approval level.
type ApprovalTierSummary struct {
	Level     ApprovalLevel `json:"level"`
	Threshold string        `json:"threshold"`
	Total     int           `json:"total"`
	Pending   int           `json:"pending"`
}

// AmountRange buckets financial impact independently from approval tiers.
type AmountRange string

const (
	AmountUpTo1Lakh   AmountRange = "upto_1l"
	Amount1To3Lakh    AmountRange = "1l_3l"
	Amount3To10Lakh   AmountRange = "3l_10l"
	AmountAbove10Lakh AmountRange = "above_10l"
)

// DateWindow restricts submissions to a rolling number of days.
type DateWindow string

const (
	Window7Days  DateWindow = "7d"
	Window30Days DateWindow = "30d"
	Window90Days DateWindow = "90d"
)

// FilterAll is accepted on every dimension as "no constraint".
const FilterAll = "All"

// SubmissionFilter combines all filter dimensions; empty fields do not constrain.
type SubmissionFilter struct {
	Search        string      `json:"search,omitempty"`
	Status        string      `json:"status,omitempty"`
	Department    string      `json:"department,omitempty"`
	Plant         string      `json:"plant,omitempty"`
	AmountRange   AmountRange `json:"amountRange,omitempty"`
	ApprovalLevel string      `json:"approvalLevel,omitempty"`
	DateWindow    DateWindow  `json:"dateWindow,omitempty"`
	GlobalView    bool        `json:"globalView,omitempty"`
}
