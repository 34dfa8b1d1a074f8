// Package aggregate derives summary statistics from a record store snapshot.
// Every figure is recomputed wholesale from the snapshot; nothing accumulates
// across calls.
package aggregate

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawprintslab/pawtrail/internal/entity"
	"github.com/pawprintslab/pawtrail/internal/store"
)

// Aggregator computes an AggregateContext from a snapshot.
type Aggregator struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Build is a pure function of the snapshot. Invoices with missing totals
// count as zero in sums; a malformed record never aborts the computation.
func (a *Aggregator) Build(snap store.Snapshot) *entity.AggregateContext {
	ctx := &entity.AggregateContext{
		InvoiceCount:      len(snap.Invoices),
		TotalAttendedDays: len(snap.Entries),
	}

	a.sumInvoices(snap.Invoices, ctx)
	a.walkAttendance(snap.Entries, ctx)
	a.staticFacts(snap.Invoices, ctx)

	if ctx.TotalAttendedDays > 0 {
		ctx.AverageCostPerDay = ctx.TotalAmountDue.
			Div(decimal.NewFromInt(int64(ctx.TotalAttendedDays))).Round(2)
	}

	a.logger.Debug("aggregate.built",
		"invoices", ctx.InvoiceCount,
		"attended_days", ctx.TotalAttendedDays,
		"total_amount", ctx.TotalAmountDue.StringFixed(2),
	)
	return ctx
}

func (a *Aggregator) sumInvoices(invoices []entity.Invoice, ctx *entity.AggregateContext) {
	type acc struct {
		total decimal.Decimal
		days  int
	}
	byPeriod := map[entity.Period]*acc{}
	byYear := map[int]decimal.Decimal{}

	for _, inv := range invoices {
		amount := decimal.Zero
		if inv.TotalAmountDue.Valid {
			amount = inv.TotalAmountDue.Decimal
		}
		ctx.TotalAmountDue = ctx.TotalAmountDue.Add(amount)

		p := byPeriod[inv.Period]
		if p == nil {
			p = &acc{}
			byPeriod[inv.Period] = p
		}
		p.total = p.total.Add(amount)
		p.days += inv.AttendedCount

		if inv.Period.Year > 0 {
			byYear[inv.Period.Year] = byYear[inv.Period.Year].Add(amount)
		}
	}

	for period, p := range byPeriod {
		ctx.PeriodTotals = append(ctx.PeriodTotals, entity.PeriodTotal{
			Period: period, Total: p.total, Days: p.days,
		})
	}
	sort.Slice(ctx.PeriodTotals, func(i, j int) bool {
		return ctx.PeriodTotals[i].Period.SortKey() < ctx.PeriodTotals[j].Period.SortKey()
	})

	for year, total := range byYear {
		ctx.YearTotals = append(ctx.YearTotals, entity.YearTotal{Year: year, Total: total})
	}
	sort.Slice(ctx.YearTotals, func(i, j int) bool {
		return ctx.YearTotals[i].Year < ctx.YearTotals[j].Year
	})
}

func (a *Aggregator) walkAttendance(entries []entity.AttendanceEntry, ctx *entity.AggregateContext) {
	if len(entries) == 0 {
		return
	}

	weekdays := map[string]int{}
	distinctDates := map[time.Time]struct{}{}
	distinctMonths := map[[2]int]struct{}{}
	years := map[int]struct{}{}

	var first, last time.Time
	for i, e := range entries {
		weekdays[e.Weekday]++
		distinctDates[e.Date] = struct{}{}
		distinctMonths[[2]int{e.Date.Year(), int(e.Date.Month())}] = struct{}{}
		years[e.Date.Year()] = struct{}{}
		if i == 0 || e.Date.Before(first) {
			first = e.Date
		}
		if i == 0 || e.Date.After(last) {
			last = e.Date
		}
	}
	ctx.FirstAttendance = &first
	ctx.LastAttendance = &last
	ctx.DistinctPeriods = len(distinctMonths)

	for y := range years {
		ctx.YearsAttended = append(ctx.YearsAttended, y)
	}
	sort.Ints(ctx.YearsAttended)

	for day, count := range weekdays {
		ctx.WeekdayCounts = append(ctx.WeekdayCounts, entity.WeekdayCount{Weekday: day, Count: count})
	}
	// Highest count first; lexicographic within equal counts, which also
	// fixes the most-frequent tie-break.
	sort.Slice(ctx.WeekdayCounts, func(i, j int) bool {
		a, b := ctx.WeekdayCounts[i], ctx.WeekdayCounts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Weekday < b.Weekday
	})
	ctx.MostFrequentWeekday = ctx.WeekdayCounts[0].Weekday

	ctx.MaxGapDays, ctx.MaxGapDefined = maxGap(distinctDates)
}

// maxGap is the largest day difference between consecutive distinct sorted
// dates. With fewer than two distinct dates the gap is undefined, not zero.
func maxGap(distinct map[time.Time]struct{}) (int, bool) {
	if len(distinct) < 2 {
		return 0, false
	}
	dates := make([]time.Time, 0, len(distinct))
	for d := range distinct {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	max := 0
	for i := 1; i < len(dates); i++ {
		gap := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		if gap > max {
			max = gap
		}
	}
	return max, true
}

func (a *Aggregator) staticFacts(invoices []entity.Invoice, ctx *entity.AggregateContext) {
	pick := func(dst *string, value string) {
		if *dst == "" && value != "" {
			*dst = value
		}
	}
	for _, inv := range invoices {
		pick(&ctx.ProviderName, inv.ProviderName)
		pick(&ctx.ProviderAddress, inv.ProviderAddress)
		pick(&ctx.ClientName, inv.ClientName)
		pick(&ctx.ClientAddress, inv.ClientAddress)
		pick(&ctx.SubjectName, inv.SubjectName)
	}
}
