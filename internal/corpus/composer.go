package corpus

import (
	"fmt"
	"strings"

	"github.com/pawprintslab/pawtrail/internal/aggregate"
	"github.com/pawprintslab/pawtrail/internal/entity"
	"github.com/pawprintslab/pawtrail/internal/store"
)

// Compose renders the record tables and the aggregate context as descriptive
// sentences for the searchable corpus. The narrative goes first so the
// leading chunks carry the computed facts; per-row sentences follow.
// Rows without an identifiable invoice number are skipped here, since a
// snippet that can't name its invoice is noise to a reader.
func Compose(snap store.Snapshot, agg *entity.AggregateContext) []string {
	texts := make([]string, 0, len(snap.Invoices)+len(snap.Entries)+1)

	texts = append(texts, aggregate.Narrative(agg))

	for _, inv := range snap.Invoices {
		if inv.ID == "" {
			continue
		}
		texts = append(texts, invoiceSentence(inv))
	}
	for _, e := range snap.Entries {
		if e.InvoiceID == "" {
			continue
		}
		texts = append(texts, attendanceSentence(e))
	}
	return texts
}

func invoiceSentence(inv entity.Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice Number: %s. Month Billed: %s.", inv.ID, inv.Period.String())
	if inv.ClientName != "" {
		fmt.Fprintf(&b, " Client: %s, Address: %s.", inv.ClientName, inv.ClientAddress)
	}
	if inv.ProviderName != "" {
		fmt.Fprintf(&b, " Service Provider: %s, Address: %s.", inv.ProviderName, inv.ProviderAddress)
	}
	if inv.SubjectName != "" {
		fmt.Fprintf(&b, " Dog Name: %s.", inv.SubjectName)
	}
	if inv.BaseCostPerDay.Valid {
		fmt.Fprintf(&b, " Cost Per Day: $%s", inv.BaseCostPerDay.Decimal.StringFixed(2))
		if inv.DiscountPercent != nil {
			fmt.Fprintf(&b, ", Discount: %d%%", *inv.DiscountPercent)
		}
		b.WriteString(".")
	}
	if inv.TotalAmountDue.Valid {
		fmt.Fprintf(&b, " Total Due: $%s.", inv.TotalAmountDue.Decimal.StringFixed(2))
	}
	fmt.Fprintf(&b, " Days Attended: %d.", inv.AttendedCount)
	return b.String()
}

func attendanceSentence(e entity.AttendanceEntry) string {
	subject := e.SubjectName
	if subject == "" {
		subject = "The dog"
	}
	return fmt.Sprintf("%s attended on %s (%s) in %d under invoice %s.",
		subject,
		e.Date.Format(entity.AttendanceDateLayout),
		e.Weekday,
		e.Date.Year(),
		e.InvoiceID,
	)
}
