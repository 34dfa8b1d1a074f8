package extract

import "strings"

// FieldKind selects how a labeled field's value is captured.
type FieldKind int

const (
	// KindText captures the remainder of the label line, trimmed.
	KindText FieldKind = iota
	// KindMultiline captures the remainder of the label line plus following
	// lines up to the next known label or a blank line.
	KindMultiline
	// KindCurrency captures the first $-prefixed decimal on the label line.
	KindCurrency
	// KindPercent captures the first integer followed by % on the label line.
	KindPercent
)

// FieldDescriptor locates one labeled field. A field whose label is absent
// yields an empty value, never an extraction failure.
type FieldDescriptor struct {
	Name  string
	Label string
	Kind  FieldKind
}

// Canonical field names.
const (
	FieldInvoiceNumber   = "invoice_number"
	FieldProviderName    = "provider_name"
	FieldProviderAddress = "provider_address"
	FieldClientName      = "client_name"
	FieldClientAddress   = "client_address"
	FieldMonthBilledFor  = "month_billed_for"
	FieldSubjectName     = "subject_name"
	FieldBaseCostPerDay  = "base_cost_per_day"
	FieldDiscountPercent = "discount_percent"
	FieldDiscountedCost  = "discounted_cost_per_day"
	FieldTotalAmountDue  = "total_amount_due"
)

// InvoiceFields is the canonical label schema. Earlier invoice layouts used
// shorter labels ("Invoice:", "Dog:"); this is the richer, later schema and
// the only one carried forward.
func InvoiceFields() []FieldDescriptor {
	return []FieldDescriptor{
		{Name: FieldInvoiceNumber, Label: "Invoice Number:", Kind: KindText},
		{Name: FieldProviderName, Label: "Service Provider Name:", Kind: KindText},
		{Name: FieldProviderAddress, Label: "Service Provider Address:", Kind: KindMultiline},
		{Name: FieldClientName, Label: "Client Name:", Kind: KindText},
		{Name: FieldClientAddress, Label: "Client Address:", Kind: KindMultiline},
		{Name: FieldMonthBilledFor, Label: "Month Billed For:", Kind: KindText},
		{Name: FieldSubjectName, Label: "Dog Name:", Kind: KindText},
		{Name: FieldBaseCostPerDay, Label: "Original Cost Per Day:", Kind: KindCurrency},
		{Name: FieldDiscountPercent, Label: "Percentage Discount:", Kind: KindPercent},
		{Name: FieldDiscountedCost, Label: "Discounted Cost Per Day:", Kind: KindCurrency},
		{Name: FieldTotalAmountDue, Label: "Total Amount Due:", Kind: KindCurrency},
	}
}

// labelSet returns every label in the schema, used as the stop set for
// multiline capture.
func labelSet(fields []FieldDescriptor) []string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, f.Label)
	}
	return labels
}

func startsWithAnyLabel(line string, labels []string) bool {
	for _, l := range labels {
		if strings.HasPrefix(line, l) {
			return true
		}
	}
	return false
}
