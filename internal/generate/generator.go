// Package generate synthesizes sample invoice text files: one invoice per
// month over a configured range, attendance on every Monday, pricing derived
// from a base daily cost and a percentage discount. The output uses the same
// label schema the extractor parses, so a generated set exercises the whole
// build/index/ask workflow without any real billing data.
package generate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawprintslab/pawtrail/internal/common"
	"github.com/pawprintslab/pawtrail/internal/entity"
)

// Sample party facts used when the caller does not supply its own.
const (
	SampleProviderName    = "Pawprints and Playcare LLC"
	SampleProviderAddress = "7427 Willow Creek Drive, Suite 210, Bloomington, MN 55439, USA"
	SampleClientName      = "Charlie Brown"
	SampleClientAddress   = "32 Willow Crescent, Bloomington, MN 55439, USA"
	SampleSubjectName     = "Snoopy"
)

// Config describes the invoice set to synthesize.
type Config struct {
	ProviderName    string
	ProviderAddress string
	ClientName      string
	ClientAddress   string
	SubjectName     string
	CostPerDay      decimal.Decimal
	DiscountPercent int
}

// File is one rendered invoice ready to be written.
type File struct {
	Name string
	Text string
}

// MonthLayout is the YYYY-MM format for generation range bounds.
const MonthLayout = "2006-01"

// ParseMonth parses a YYYY-MM bound into the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month %q (want YYYY-MM): %w", s, err)
	}
	return t, nil
}

// Invoices renders one invoice per month from from through to, inclusive.
func Invoices(cfg Config, from, to time.Time) ([]File, error) {
	if cfg.CostPerDay.IsNegative() || cfg.CostPerDay.IsZero() {
		return nil, common.MissingPrerequisite("positive cost per day")
	}
	if cfg.DiscountPercent < 0 || cfg.DiscountPercent > 100 {
		return nil, fmt.Errorf("discount percent %d out of range", cfg.DiscountPercent)
	}
	from = time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	if to.Before(from) {
		return nil, fmt.Errorf("generation range %s..%s is inverted",
			from.Format(MonthLayout), to.Format(MonthLayout))
	}

	var files []File
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 1, 0) {
		files = append(files, render(cfg, cur.Year(), cur.Month()))
	}
	return files, nil
}

func render(cfg Config, year int, month time.Month) File {
	id := fmt.Sprintf("INV-%d-%02d", year, int(month))
	mondays := mondaysIn(year, month)
	discounted := cfg.CostPerDay.
		Mul(decimal.NewFromInt(int64(100 - cfg.DiscountPercent))).
		Div(decimal.NewFromInt(100)).Round(2)
	total := discounted.Mul(decimal.NewFromInt(int64(len(mondays)))).Round(2)

	var b strings.Builder
	fmt.Fprintf(&b, "Invoice Number: %s\n", id)
	fmt.Fprintf(&b, "Service Provider Name: %s\n", cfg.ProviderName)
	fmt.Fprintf(&b, "Service Provider Address: %s\n", cfg.ProviderAddress)
	fmt.Fprintf(&b, "Client Name: %s\n", cfg.ClientName)
	fmt.Fprintf(&b, "Client Address: %s\n", cfg.ClientAddress)
	fmt.Fprintf(&b, "Month Billed For: %s %d\n", month.String(), year)
	fmt.Fprintf(&b, "Dog Name: %s\n", cfg.SubjectName)
	b.WriteString("\nDates Attended:\n")
	for _, d := range mondays {
		fmt.Fprintf(&b, "- %s\n", d.Format(entity.AttendanceDateLayout))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Original Cost Per Day: $%s\n", cfg.CostPerDay.StringFixed(2))
	fmt.Fprintf(&b, "Percentage Discount: %d%%\n", cfg.DiscountPercent)
	fmt.Fprintf(&b, "Discounted Cost Per Day: $%s\n", discounted.StringFixed(2))
	fmt.Fprintf(&b, "Total Amount Due: $%s\n", total.StringFixed(2))

	return File{
		Name: fmt.Sprintf("invoice_%s.txt", id),
		Text: b.String(),
	}
}

// WriteAll writes every rendered invoice into dir, creating it if needed.
func WriteAll(dir string, files []File, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create invoices dir: %w", err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), []byte(f.Text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
		logger.Debug("generate.write", "file", f.Name)
	}
	return nil
}

// mondaysIn lists every Monday of the given month, ascending.
func mondaysIn(year int, month time.Month) []time.Time {
	var days []time.Time
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	for d := 1; d <= last; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		if date.Weekday() == time.Monday {
			days = append(days, date)
		}
	}
	return days
}
