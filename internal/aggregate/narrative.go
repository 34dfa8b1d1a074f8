package aggregate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pawprintslab/pawtrail/internal/entity"
)

const narrativeDateLayout = "02 January 2006"

// Narrative renders the aggregate context as deterministic plain text for
// the structured answer tier. Undefined figures are omitted rather than
// rendered as zero.
func Narrative(ctx *entity.AggregateContext) string {
	var b strings.Builder

	if ctx.SubjectName != "" {
		fmt.Fprintf(&b, "This data is about %s's daycare attendance and invoices.\n\n", ctx.SubjectName)
	}

	if ctx.ClientName != "" || ctx.ClientAddress != "" {
		b.WriteString("Client Details:\n")
		writeFact(&b, "Client Name", ctx.ClientName)
		writeFact(&b, "Client Address", ctx.ClientAddress)
		writeFact(&b, "Dog's Name", ctx.SubjectName)
		b.WriteString("\n")
	}
	if ctx.ProviderName != "" || ctx.ProviderAddress != "" {
		b.WriteString("Service Provider Details:\n")
		writeFact(&b, "Name", ctx.ProviderName)
		writeFact(&b, "Address", ctx.ProviderAddress)
		b.WriteString("\n")
	}

	b.WriteString("Invoice Summary:\n")
	fmt.Fprintf(&b, "- Total number of invoices: %d\n", ctx.InvoiceCount)
	fmt.Fprintf(&b, "- Total amount billed: $%s\n", ctx.TotalAmountDue.StringFixed(2))
	fmt.Fprintf(&b, "- Total days attended: %d\n", ctx.TotalAttendedDays)
	if ctx.TotalAttendedDays > 0 {
		fmt.Fprintf(&b, "- Average cost per attended day: $%s\n", ctx.AverageCostPerDay.StringFixed(2))
	}
	if ctx.FirstAttendance != nil {
		fmt.Fprintf(&b, "- First attendance: %s (%s)\n",
			ctx.FirstAttendance.Format(narrativeDateLayout), ctx.FirstAttendance.Weekday())
	}
	if ctx.LastAttendance != nil {
		fmt.Fprintf(&b, "- Most recent attendance: %s (%s)\n",
			ctx.LastAttendance.Format(narrativeDateLayout), ctx.LastAttendance.Weekday())
	}
	if ctx.MostFrequentWeekday != "" {
		fmt.Fprintf(&b, "- Most frequent attendance day: %s\n", ctx.MostFrequentWeekday)
	}
	if ctx.MaxGapDefined {
		fmt.Fprintf(&b, "- Longest gap between attendances: %d days\n", ctx.MaxGapDays)
	}
	fmt.Fprintf(&b, "- Distinct months attended: %d\n", ctx.DistinctPeriods)
	if len(ctx.YearsAttended) > 0 {
		fmt.Fprintf(&b, "- Years attended: %s\n", joinInts(ctx.YearsAttended))
	}

	if len(ctx.YearTotals) > 0 {
		b.WriteString("\nTotal billed per year:\n")
		for _, yt := range ctx.YearTotals {
			fmt.Fprintf(&b, "- %d: $%s\n", yt.Year, yt.Total.StringFixed(2))
		}
	}

	if len(ctx.PeriodTotals) > 0 {
		b.WriteString("\nMonthly breakdown:\n")
		for _, pt := range ctx.PeriodTotals {
			fmt.Fprintf(&b, "- %s: %d days attended, $%s billed\n",
				pt.Period.String(), pt.Days, pt.Total.StringFixed(2))
		}
	}

	if len(ctx.WeekdayCounts) > 0 {
		b.WriteString("\nAttendance by day of the week:\n")
		for _, wc := range ctx.WeekdayCounts {
			fmt.Fprintf(&b, "- %s: %d attendances\n", wc.Weekday, wc.Count)
		}
	}

	return strings.TrimSpace(b.String())
}

func writeFact(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
