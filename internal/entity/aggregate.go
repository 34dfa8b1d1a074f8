package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodTotal is the billed sum for one period.
type PeriodTotal struct {
	Period Period          `json:"period"`
	Total  decimal.Decimal `json:"total"`
	Days   int             `json:"days"`
}

// YearTotal is the billed sum for one calendar year.
type YearTotal struct {
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

// WeekdayCount is the attendance frequency for one weekday.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// AggregateContext holds everything the structured answer tier knows.
// It is recomputed wholesale from a store snapshot and never mutated in
// place; nil/false fields mean "undefined", not zero.
type AggregateContext struct {
	InvoiceCount      int             `json:"invoice_count"`
	TotalAttendedDays int             `json:"total_attended_days"`
	TotalAmountDue    decimal.Decimal `json:"total_amount_due"`

	PeriodTotals  []PeriodTotal  `json:"period_totals"`
	YearTotals    []YearTotal    `json:"year_totals"`
	WeekdayCounts []WeekdayCount `json:"weekday_counts"`

	// MostFrequentWeekday breaks ties lexicographically so the answer is
	// stable across runs.
	MostFrequentWeekday string `json:"most_frequent_weekday"`

	FirstAttendance *time.Time `json:"first_attendance,omitempty"`
	LastAttendance  *time.Time `json:"last_attendance,omitempty"`

	// MaxGapDays is only meaningful when MaxGapDefined is true, which
	// requires at least two distinct attendance dates.
	MaxGapDays    int  `json:"max_gap_days"`
	MaxGapDefined bool `json:"max_gap_defined"`

	DistinctPeriods   int             `json:"distinct_periods"`
	AverageCostPerDay decimal.Decimal `json:"average_cost_per_day"`
	YearsAttended     []int           `json:"years_attended"`

	// Static facts carried from the first invoice that has them.
	ProviderName    string `json:"provider_name"`
	ProviderAddress string `json:"provider_address"`
	ClientName      string `json:"client_name"`
	ClientAddress   string `json:"client_address"`
	SubjectName     string `json:"subject_name"`
}
