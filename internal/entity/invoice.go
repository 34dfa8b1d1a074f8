package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is one parsed invoice for data transfer between layers.
// Pricing fields use NullDecimal so "label not found" stays distinct from
// "found and is zero"; DiscountPercent is nil for the same reason.
type Invoice struct {
	ID              string              `json:"invoice_number"`
	SourceID        string              `json:"source_id"`
	Period          Period              `json:"period"`
	ProviderName    string              `json:"provider_name"`
	ProviderAddress string              `json:"provider_address"`
	ClientName      string              `json:"client_name"`
	ClientAddress   string              `json:"client_address"`
	SubjectName     string              `json:"subject_name"`
	BaseCostPerDay  decimal.NullDecimal `json:"base_cost_per_day"`
	DiscountPercent *int                `json:"discount_percent,omitempty"`
	DiscountedCost  decimal.NullDecimal `json:"discounted_cost_per_day"`
	TotalAmountDue  decimal.NullDecimal `json:"total_amount_due"`
	AttendedCount   int                 `json:"attended_count"`
	RawText         string              `json:"-"`
}

// AttendanceEntry is one attended date owned by an invoice. Weekday is
// derived from Date and never stored independently of it.
type AttendanceEntry struct {
	InvoiceID   string    `json:"invoice_number"`
	SubjectName string    `json:"subject_name"`
	Date        time.Time `json:"date"`
	Weekday     string    `json:"weekday"`
}

// AttendanceDateLayout is the single fixed wire format for attended dates.
const AttendanceDateLayout = "02/01/2006"

// NewAttendanceEntry derives the weekday from the parsed date.
func NewAttendanceEntry(invoiceID, subject string, date time.Time) AttendanceEntry {
	return AttendanceEntry{
		InvoiceID:   invoiceID,
		SubjectName: subject,
		Date:        date,
		Weekday:     date.Weekday().String(),
	}
}
