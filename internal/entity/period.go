package entity

import "fmt"

// Period is the (month, year) pair an invoice bills for.
type Period struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

// UnknownPeriod is the sentinel used when the billed month/year cannot be
// parsed. Records keep this sentinel instead of being dropped.
var UnknownPeriod = Period{Month: "Unknown", Year: 0}

var monthNumbers = map[string]int{
	"January": 1, "February": 2, "March": 3, "April": 4,
	"May": 5, "June": 6, "July": 7, "August": 8,
	"September": 9, "October": 10, "November": 11, "December": 12,
}

// MonthNumber returns 1..12 for a known month name, 0 otherwise.
func MonthNumber(month string) int {
	return monthNumbers[month]
}

// IsUnknown reports whether the period is the unknown sentinel.
func (p Period) IsUnknown() bool {
	return p == UnknownPeriod
}

// SortKey orders periods chronologically. Unknown periods sort first
// (year 0), which keeps the ordering total and deterministic.
func (p Period) SortKey() int {
	return p.Year*100 + MonthNumber(p.Month)
}

func (p Period) String() string {
	if p.IsUnknown() {
		return "Unknown"
	}
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
