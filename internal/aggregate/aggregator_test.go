package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprintslab/pawtrail/internal/entity"
	"github.com/pawprintslab/pawtrail/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func invoice(id string, month string, year int, total string, days int) entity.Invoice {
	inv := entity.Invoice{
		ID:            id,
		Period:        entity.Period{Month: month, Year: year},
		AttendedCount: days,
	}
	if total != "" {
		inv.TotalAmountDue = decimal.NullDecimal{
			Decimal: decimal.RequireFromString(total),
			Valid:   true,
		}
	}
	return inv
}

func entry(invoiceID string, date time.Time) entity.AttendanceEntry {
	return entity.NewAttendanceEntry(invoiceID, "Snoopy", date)
}

func TestBuildTotalsAndPeriods(t *testing.T) {
	snap := store.Snapshot{
		Invoices: []entity.Invoice{
			invoice("INV-1", "January", 2024, "30.00", 3),
			invoice("INV-2", "February", 2024, "20.00", 2),
		},
		Entries: []entity.AttendanceEntry{
			entry("INV-1", day(2024, time.January, 1)),
			entry("INV-1", day(2024, time.January, 8)),
			entry("INV-1", day(2024, time.January, 15)),
			entry("INV-2", day(2024, time.February, 5)),
			entry("INV-2", day(2024, time.February, 12)),
		},
	}

	ctx := New(nil).Build(snap)

	assert.Equal(t, 2, ctx.InvoiceCount)
	assert.Equal(t, 5, ctx.TotalAttendedDays)
	assert.Equal(t, "50.00", ctx.TotalAmountDue.StringFixed(2))
	assert.Equal(t, "10.00", ctx.AverageCostPerDay.StringFixed(2))

	require.Len(t, ctx.PeriodTotals, 2)
	assert.Equal(t, "January", ctx.PeriodTotals[0].Period.Month)
	assert.Equal(t, 3, ctx.PeriodTotals[0].Days)
	assert.Equal(t, "30.00", ctx.PeriodTotals[0].Total.StringFixed(2))
	assert.Equal(t, "February", ctx.PeriodTotals[1].Period.Month)

	require.Len(t, ctx.YearTotals, 1)
	assert.Equal(t, 2024, ctx.YearTotals[0].Year)
	assert.Equal(t, "50.00", ctx.YearTotals[0].Total.StringFixed(2))

	assert.Equal(t, 2, ctx.DistinctPeriods)
	assert.Equal(t, []int{2024}, ctx.YearsAttended)
}

func TestBuildNullTotalCountsAsZero(t *testing.T) {
	snap := store.Snapshot{
		Invoices: []entity.Invoice{
			invoice("INV-1", "January", 2024, "30.00", 3),
			invoice("INV-2", "February", 2024, "", 2),
		},
	}

	ctx := New(nil).Build(snap)
	assert.Equal(t, "30.00", ctx.TotalAmountDue.StringFixed(2))
}

func TestBuildWeekdayTieBreak(t *testing.T) {
	// Two Mondays, two Fridays: the tie must resolve lexicographically,
	// so Friday wins over Monday.
	snap := store.Snapshot{
		Entries: []entity.AttendanceEntry{
			entry("INV-1", day(2024, time.January, 1)),  // Monday
			entry("INV-1", day(2024, time.January, 8)),  // Monday
			entry("INV-1", day(2024, time.January, 5)),  // Friday
			entry("INV-1", day(2024, time.January, 12)), // Friday
		},
	}

	ctx := New(nil).Build(snap)
	assert.Equal(t, "Friday", ctx.MostFrequentWeekday)
	require.Len(t, ctx.WeekdayCounts, 2)
	assert.Equal(t, "Friday", ctx.WeekdayCounts[0].Weekday)
	assert.Equal(t, 2, ctx.WeekdayCounts[0].Count)
}

func TestBuildMaxGap(t *testing.T) {
	snap := store.Snapshot{
		Entries: []entity.AttendanceEntry{
			entry("INV-1", day(2024, time.January, 1)),
			entry("INV-1", day(2024, time.January, 8)),
			entry("INV-1", day(2024, time.January, 31)),
		},
	}

	ctx := New(nil).Build(snap)
	assert.True(t, ctx.MaxGapDefined)
	assert.Equal(t, 23, ctx.MaxGapDays)
	require.NotNil(t, ctx.FirstAttendance)
	assert.Equal(t, day(2024, time.January, 1), *ctx.FirstAttendance)
	require.NotNil(t, ctx.LastAttendance)
	assert.Equal(t, day(2024, time.January, 31), *ctx.LastAttendance)
}

func TestBuildMaxGapUndefined(t *testing.T) {
	single := store.Snapshot{
		Entries: []entity.AttendanceEntry{
			entry("INV-1", day(2024, time.January, 1)),
			// Duplicate date: still only one distinct attendance date.
			entry("INV-1", day(2024, time.January, 1)),
		},
	}

	ctx := New(nil).Build(single)
	assert.False(t, ctx.MaxGapDefined)
	assert.Zero(t, ctx.MaxGapDays)
}

func TestBuildEmptySnapshot(t *testing.T) {
	ctx := New(nil).Build(store.Snapshot{})

	assert.Zero(t, ctx.InvoiceCount)
	assert.Zero(t, ctx.TotalAttendedDays)
	assert.False(t, ctx.MaxGapDefined)
	assert.Nil(t, ctx.FirstAttendance)
	assert.Empty(t, ctx.MostFrequentWeekday)
	assert.Equal(t, "0.00", ctx.TotalAmountDue.StringFixed(2))
}

func TestBuildStaticFactsFirstWins(t *testing.T) {
	a := invoice("INV-1", "January", 2024, "", 0)
	a.ClientName = "Charlie Brown"
	b := invoice("INV-2", "February", 2024, "", 0)
	b.ClientName = "Somebody Else"
	b.SubjectName = "Snoopy"

	ctx := New(nil).Build(store.Snapshot{Invoices: []entity.Invoice{a, b}})
	assert.Equal(t, "Charlie Brown", ctx.ClientName)
	assert.Equal(t, "Snoopy", ctx.SubjectName)
}

func TestNarrativeOmitsUndefinedFigures(t *testing.T) {
	ctx := New(nil).Build(store.Snapshot{})
	text := Narrative(ctx)

	assert.Contains(t, text, "Total number of invoices: 0")
	assert.NotContains(t, text, "Longest gap")
	assert.NotContains(t, text, "Average cost")
	assert.NotContains(t, text, "First attendance")
}

func TestNarrativeRendersComputedFacts(t *testing.T) {
	inv := invoice("INV-1", "January", 2024, "30.00", 3)
	inv.SubjectName = "Snoopy"
	snap := store.Snapshot{
		Invoices: []entity.Invoice{inv},
		Entries: []entity.AttendanceEntry{
			entry("INV-1", day(2024, time.January, 1)),
			entry("INV-1", day(2024, time.January, 8)),
		},
	}

	text := Narrative(New(nil).Build(snap))
	assert.Contains(t, text, "This data is about Snoopy's daycare attendance")
	assert.Contains(t, text, "Total amount billed: $30.00")
	assert.Contains(t, text, "- 2024: $30.00")
	assert.Contains(t, text, "January 2024: 3 days attended, $30.00 billed")
	assert.Contains(t, text, "Longest gap between attendances: 7 days")
	assert.Contains(t, text, "- Monday: 2 attendances")
}
