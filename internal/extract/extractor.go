package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawprintslab/pawtrail/internal/entity"
)

var (
	dateCandidateRe = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
	currencyRe      = regexp.MustCompile(`\$\s*([0-9]+(?:\.[0-9]+)?)`)
	percentRe       = regexp.MustCompile(`([0-9]{1,3})\s*%`)
)

// Result is one document's extraction outcome. Warnings collect per-field
// and per-date problems that were tolerated rather than escalated.
type Result struct {
	Invoice  entity.Invoice
	Entries  []entity.AttendanceEntry
	Warnings []string
}

// Extractor parses one document's raw text into an invoice plus its
// attendance entries. It never fails on malformed input: absent labels give
// empty fields, unparsable dates are dropped with a warning, and an
// unparsable billing period falls back to the unknown sentinel.
type Extractor struct {
	fields []FieldDescriptor
	labels []string
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	fields := InvoiceFields()
	return &Extractor{
		fields: fields,
		labels: labelSet(fields),
		logger: logger,
	}
}

// Extract runs the descriptor table over the document text and assembles
// the typed record. Always returns a Result, even for empty input.
func (e *Extractor) Extract(doc entity.Document) Result {
	res := Result{}
	lines := splitLines(doc.Text)
	values := e.captureFields(lines)

	inv := entity.Invoice{
		ID:              values[FieldInvoiceNumber],
		SourceID:        doc.ID,
		ProviderName:    values[FieldProviderName],
		ProviderAddress: values[FieldProviderAddress],
		ClientName:      values[FieldClientName],
		ClientAddress:   values[FieldClientAddress],
		SubjectName:     values[FieldSubjectName],
		RawText:         doc.Text,
	}

	if inv.ID == "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: invoice number label not found", doc.ID))
		e.logger.Info("extract.field_missing", "doc", doc.ID, "field", FieldInvoiceNumber)
	}

	var warn []string
	inv.Period, warn = parsePeriod(doc.ID, values[FieldMonthBilledFor])
	res.Warnings = append(res.Warnings, warn...)

	inv.BaseCostPerDay = parseCurrency(values[FieldBaseCostPerDay])
	inv.DiscountPercent = parsePercent(values[FieldDiscountPercent])
	inv.DiscountedCost = parseCurrency(values[FieldDiscountedCost])
	inv.TotalAmountDue = parseCurrency(values[FieldTotalAmountDue])

	res.Entries, warn = e.scanDates(doc, inv)
	res.Warnings = append(res.Warnings, warn...)
	inv.AttendedCount = len(res.Entries)

	derivePricing(&inv)

	res.Invoice = inv
	return res
}

// captureFields runs every descriptor over the document lines once.
// Missing labels leave the value empty.
func (e *Extractor) captureFields(lines []string) map[string]string {
	values := make(map[string]string, len(e.fields))
	for _, f := range e.fields {
		values[f.Name] = e.captureField(lines, f)
	}
	return values
}

func (e *Extractor) captureField(lines []string, f FieldDescriptor) string {
	for i, line := range lines {
		if !strings.HasPrefix(line, f.Label) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, f.Label))
		switch f.Kind {
		case KindMultiline:
			return e.captureSpan(rest, lines[i+1:])
		default:
			return rest
		}
	}
	return ""
}

// captureSpan extends a multiline field until the next known label, a blank
// line, or the bounded span runs out.
func (e *Extractor) captureSpan(first string, following []string) string {
	const maxSpan = 4
	parts := []string{first}
	for i, line := range following {
		if i >= maxSpan {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || startsWithAnyLabel(trimmed, e.labels) || dateCandidateRe.MatchString(trimmed) {
			break
		}
		parts = append(parts, trimmed)
	}
	joined := strings.Join(parts, ", ")
	return strings.Trim(strings.TrimSpace(joined), ",")
}

// scanDates collects every dd/mm/yyyy candidate in the text, independent of
// labels. Candidates failing the fixed format are dropped, not fatal.
func (e *Extractor) scanDates(doc entity.Document, inv entity.Invoice) ([]entity.AttendanceEntry, []string) {
	var entries []entity.AttendanceEntry
	var warnings []string
	for _, raw := range dateCandidateRe.FindAllString(doc.Text, -1) {
		date, err := time.Parse(entity.AttendanceDateLayout, raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: dropped malformed date %q", doc.ID, raw))
			e.logger.Warn("extract.date_malformed", "doc", doc.ID, "candidate", raw, "error", err)
			continue
		}
		entries = append(entries, entity.NewAttendanceEntry(inv.ID, inv.SubjectName, date))
	}
	return entries, warnings
}

// parsePeriod splits the captured month/year value on whitespace. Anything
// other than exactly two tokens with a numeric year yields the sentinel.
func parsePeriod(docID, value string) (entity.Period, []string) {
	tokens := strings.Fields(value)
	if len(tokens) != 2 {
		if value != "" {
			return entity.UnknownPeriod, []string{fmt.Sprintf("%s: unparsable billing period %q", docID, value)}
		}
		return entity.UnknownPeriod, nil
	}
	year, err := strconv.Atoi(tokens[1])
	if err != nil {
		return entity.UnknownPeriod, []string{fmt.Sprintf("%s: unparsable billing year %q", docID, tokens[1])}
	}
	return entity.Period{Month: tokens[0], Year: year}, nil
}

func parseCurrency(value string) decimal.NullDecimal {
	m := currencyRe.FindStringSubmatch(value)
	if m == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func parsePercent(value string) *int {
	m := percentRe.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return nil
	}
	return &n
}

// derivePricing fills the discounted rate and total when their inputs are
// present and the invoice didn't state them. Missing inputs stay missing;
// nothing is ever derived from zero defaults.
func derivePricing(inv *entity.Invoice) {
	if !inv.DiscountedCost.Valid && inv.BaseCostPerDay.Valid && inv.DiscountPercent != nil {
		factor := decimal.NewFromInt(int64(100 - *inv.DiscountPercent)).Div(decimal.NewFromInt(100))
		inv.DiscountedCost = decimal.NullDecimal{
			Decimal: inv.BaseCostPerDay.Decimal.Mul(factor).Round(2),
			Valid:   true,
		}
	}
	if !inv.TotalAmountDue.Valid && inv.DiscountedCost.Valid {
		inv.TotalAmountDue = decimal.NullDecimal{
			Decimal: inv.DiscountedCost.Decimal.Mul(decimal.NewFromInt(int64(inv.AttendedCount))).Round(2),
			Valid:   true,
		}
	}
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
